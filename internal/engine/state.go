package engine

import (
	"github.com/gireeshr/grait-trade-bot/internal/risk"
	"github.com/gireeshr/grait-trade-bot/internal/trend"
)

// Side is a trade direction as tracked by the state machine.
type Side string

const (
	SideNone Side = "none"
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

func opposite(s Side) Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// SymbolState is the per-symbol mutable trading state. It is created once
// per configured symbol and mutated only by the engine's control loop;
// Blocked is monotonic and terminal for the run.
type SymbolState struct {
	Symbol            string
	LastTradeSide     Side
	ExpectedTradeSide Side
	Blocked           bool
	RealizedPnL       float64
	UnrealizedPnL     float64
	TradeCount        int
	LastTradePrice    float64
	LastPrice         float64
	Trend             trend.Trend
	PreviousTrend     trend.Trend
}

func newSymbolState(symbol string) *SymbolState {
	return &SymbolState{
		Symbol:            symbol,
		LastTradeSide:     SideNone,
		ExpectedTradeSide: SideBuy,
		Trend:             trend.Neutral,
		PreviousTrend:     trend.Neutral,
	}
}

// markOut recomputes the open mark-out against the last trade price. With
// no trade on the books the mark-out is zero.
func (s *SymbolState) markOut(price float64, quantity int) {
	if s.LastTradePrice == 0 {
		s.UnrealizedPnL = 0
		return
	}
	diff := price - s.LastTradePrice
	switch s.LastTradeSide {
	case SideBuy:
		s.UnrealizedPnL = diff * float64(quantity)
	case SideSell:
		s.UnrealizedPnL = -diff * float64(quantity)
	default:
		s.UnrealizedPnL = 0
	}
}

func (s *SymbolState) snapshot() risk.Snapshot {
	return risk.Snapshot{
		Symbol:         s.Symbol,
		RealizedPnL:    s.RealizedPnL,
		UnrealizedPnL:  s.UnrealizedPnL,
		TradeCount:     s.TradeCount,
		LastTradePrice: s.LastTradePrice,
	}
}
