// Package signal standardizes the trade-intent payload handed from the
// engine to order gateways.
package signal

import (
	"time"

	"github.com/google/uuid"
)

// Action enumerates the trade intents a state transition can produce.
type Action string

const (
	Buy  Action = "buy"
	Sell Action = "sell"
	Exit Action = "exit"
)

// Sentiment tags the market view attached to a signal.
type Sentiment string

const (
	Bullish Sentiment = "bullish"
	Bearish Sentiment = "bearish"
	Flat    Sentiment = "flat"
)

// Trade is one trade-intent signal for the order gateway.
type Trade struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	Action    Action    `json:"action"`
	Sentiment Sentiment `json:"sentiment"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"`
	Ts        time.Time `json:"ts"`
}

// New stamps a trade signal with a fresh id and the current time.
func New(symbol string, action Action, sentiment Sentiment, quantity int, price float64) Trade {
	return Trade{
		ID:        uuid.NewString(),
		Symbol:    symbol,
		Action:    action,
		Sentiment: sentiment,
		Quantity:  quantity,
		Price:     price,
		Ts:        time.Now(),
	}
}
