package gateway

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/gireeshr/grait-trade-bot/internal/signal"
)

// Log is a logger-backed gateway for dry runs and tests.
type Log struct {
	log zerolog.Logger
}

// NewLog wraps a zerolog logger as an order gateway.
func NewLog(log zerolog.Logger) *Log { return &Log{log: log} }

func (g *Log) Name() string { return "log" }

func (g *Log) Buy(ctx context.Context, t signal.Trade) error  { return g.emit(t) }
func (g *Log) Sell(ctx context.Context, t signal.Trade) error { return g.emit(t) }
func (g *Log) Exit(ctx context.Context, t signal.Trade) error { return g.emit(t) }

func (g *Log) emit(t signal.Trade) error {
	g.log.Info().
		Str("id", t.ID).
		Str("sym", t.Symbol).
		Str("action", string(t.Action)).
		Str("sentiment", string(t.Sentiment)).
		Int("qty", t.Quantity).
		Float64("px", t.Price).
		Msg("trade signal (dry run)")
	return nil
}
