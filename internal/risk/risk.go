// Package risk holds the guard-rails applied around trade emission: a
// notional gate per trade and pluggable block policies.
package risk

// Limits encodes hard caps checked before a trade is committed.
type Limits struct {
	MaxNotionalPerTrade float64
}

// Allow reports whether a trade of the given notional may proceed. A zero
// limit disables the gate.
func (l Limits) Allow(notional float64) bool {
	return l.MaxNotionalPerTrade <= 0 || notional <= l.MaxNotionalPerTrade
}

// Snapshot is the read-only view of one symbol's trading state a policy
// sees after a committed trade.
type Snapshot struct {
	Symbol         string
	RealizedPnL    float64
	UnrealizedPnL  float64
	TradeCount     int
	LastTradePrice float64
}

// Policy decides whether a symbol should be halted for the rest of the run.
// The take-profit halt is not a Policy: it is hard-wired in the engine and
// always active. Policies cover the additional, configurable block rules.
type Policy interface {
	Name() string
	ShouldBlock(Snapshot) bool
}

// MaxTrades halts a symbol once it has traded n times.
type MaxTrades struct {
	N int
}

func (p MaxTrades) Name() string { return "max_trades" }

func (p MaxTrades) ShouldBlock(s Snapshot) bool {
	return p.N > 0 && s.TradeCount >= p.N
}

// MaxDailyLoss halts a symbol once total PnL (realized plus open mark-out)
// has fallen to -Limit or below.
type MaxDailyLoss struct {
	Limit float64
}

func (p MaxDailyLoss) Name() string { return "max_daily_loss" }

func (p MaxDailyLoss) ShouldBlock(s Snapshot) bool {
	return p.Limit > 0 && s.RealizedPnL+s.UnrealizedPnL <= -p.Limit
}
