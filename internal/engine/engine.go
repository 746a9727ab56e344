// Package engine consumes merged alert batches and drives the per-symbol
// trade-intent state machine.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gireeshr/grait-trade-bot/internal/alert"
	"github.com/gireeshr/grait-trade-bot/internal/gateway"
	"github.com/gireeshr/grait-trade-bot/internal/indicator"
	"github.com/gireeshr/grait-trade-bot/internal/metrics"
	"github.com/gireeshr/grait-trade-bot/internal/risk"
	"github.com/gireeshr/grait-trade-bot/internal/signal"
	"github.com/gireeshr/grait-trade-bot/internal/trend"
)

// ErrUnknownSymbol marks the one fatal condition: an alert reached the
// engine for a symbol that was never configured. That is a setup bug, not a
// data problem, so the run aborts instead of silently creating state.
var ErrUnknownSymbol = errors.New("no symbol state")

const defaultTakeProfit = 2.0

// Engine is the single writer of all SymbolState. It processes batches
// strictly sequentially; no operation in here suspends except gateway
// delivery, whose outcome is only logged.
type Engine struct {
	log        zerolog.Logger
	store      *indicator.Store
	classifier trend.Classifier
	gw         gateway.OrderGateway
	limits     risk.Limits
	policies   []risk.Policy
	journal    *Journal
	quantity   int
	takeProfit float64
	states     map[string]*SymbolState
}

// Option configures Engine construction.
type Option func(*Engine)

// WithQuantity sets the quantity attached to every trade signal (default 1).
func WithQuantity(q int) Option {
	return func(e *Engine) {
		if q > 0 {
			e.quantity = q
		}
	}
}

// WithTakeProfit overrides the per-trade profit factor that halts a symbol.
func WithTakeProfit(v float64) Option {
	return func(e *Engine) {
		if v > 0 {
			e.takeProfit = v
		}
	}
}

// WithLimits installs the per-trade notional gate.
func WithLimits(l risk.Limits) Option {
	return func(e *Engine) { e.limits = l }
}

// WithPolicies installs extra block policies evaluated after each trade.
func WithPolicies(ps ...risk.Policy) Option {
	return func(e *Engine) { e.policies = ps }
}

// WithJournal records every emitted signal to a JSONL journal.
func WithJournal(j *Journal) Option {
	return func(e *Engine) { e.journal = j }
}

// WithIndicatorCapacity bounds the per-symbol indicator series.
func WithIndicatorCapacity(n int) Option {
	return func(e *Engine) { e.store = indicator.NewStore(n) }
}

// New builds an engine with one pre-created SymbolState per symbol.
func New(symbols []string, classifier trend.Classifier, gw gateway.OrderGateway, log zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		log:        log,
		store:      indicator.NewStore(0),
		classifier: classifier,
		gw:         gw,
		quantity:   1,
		takeProfit: defaultTakeProfit,
		states:     make(map[string]*SymbolState, len(symbols)),
	}
	for _, sym := range symbols {
		e.states[sym] = newSymbolState(sym)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store exposes the indicator store for inspection (tests, status dumps).
func (e *Engine) Store() *indicator.Store { return e.store }

// State returns the state for a symbol, or nil if the symbol is unknown.
func (e *Engine) State(symbol string) *SymbolState { return e.states[symbol] }

// Run drains batches until ctx is canceled or the channel closes. A batch
// in flight is always processed to completion; only ErrUnknownSymbol aborts
// early.
func (e *Engine) Run(ctx context.Context, batches <-chan []alert.Alert) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case batch, ok := <-batches:
			if !ok {
				return nil
			}
			if err := e.ProcessBatch(ctx, batch); err != nil {
				return err
			}
		}
	}
}

// ProcessBatch applies a batch's alerts in delivered order.
func (e *Engine) ProcessBatch(ctx context.Context, batch []alert.Alert) error {
	for _, a := range batch {
		st, ok := e.states[a.Symbol]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownSymbol, a.Symbol)
		}

		e.store.Update(a)
		if next := e.classifier.Classify(a.Price, a.SMA20, a.EMA20, a.EMA9); next != st.Trend {
			st.PreviousTrend = st.Trend
			st.Trend = next
		}

		if st.Blocked {
			continue
		}
		e.evaluate(ctx, st, a)
	}
	return nil
}

func (e *Engine) evaluate(ctx context.Context, st *SymbolState, a alert.Alert) {
	oldPrice := st.LastPrice
	newPrice := a.Price
	st.LastPrice = newPrice

	if oldPrice == 0 {
		// First observation: baseline only, no trade action.
		e.log.Debug().Str("sym", st.Symbol).Float64("px", newPrice).Msg("baseline price recorded")
		return
	}

	st.markOut(newPrice, e.quantity)

	// Take-profit halt runs before any directional logic.
	if st.UnrealizedPnL >= e.takeProfit {
		st.RealizedPnL += st.UnrealizedPnL
		st.UnrealizedPnL = 0
		e.block(ctx, st, newPrice, "take profit reached")
		return
	}

	switch {
	case newPrice > oldPrice:
		if st.LastTradeSide != SideBuy && st.ExpectedTradeSide == SideBuy {
			e.commitTrade(ctx, st, SideBuy, newPrice)
		} else {
			st.LastTradeSide = SideBuy
		}
	case newPrice < oldPrice:
		if st.LastTradeSide != SideSell && st.ExpectedTradeSide == SideSell {
			e.commitTrade(ctx, st, SideSell, newPrice)
		} else {
			st.LastTradeSide = SideSell
		}
	}
	// Equal consecutive prices: no action.
}

// commitTrade applies the state transition for a directional trade and then
// emits the matching signal. The transition is committed before delivery is
// attempted: gateway failures never roll it back.
func (e *Engine) commitTrade(ctx context.Context, st *SymbolState, side Side, price float64) {
	notional := float64(e.quantity) * price
	if !e.limits.Allow(notional) {
		e.log.Debug().Str("sym", st.Symbol).Float64("notional", notional).Msg("trade rejected by notional limit")
		return
	}

	st.RealizedPnL += st.UnrealizedPnL
	st.TradeCount++
	st.LastTradePrice = price
	st.UnrealizedPnL = 0
	st.LastTradeSide = side
	st.ExpectedTradeSide = opposite(side)

	action, sentiment := signal.Buy, signal.Bullish
	if side == SideSell {
		action, sentiment = signal.Sell, signal.Bearish
	}
	tr := signal.New(st.Symbol, action, sentiment, e.quantity, price)
	e.deliver(ctx, tr)

	e.log.Info().
		Str("sym", st.Symbol).
		Str("action", string(action)).
		Float64("px", price).
		Int("trades", st.TradeCount).
		Float64("realized", st.RealizedPnL).
		Msg("trade committed")

	for _, p := range e.policies {
		if p.ShouldBlock(st.snapshot()) {
			e.block(ctx, st, price, "policy "+p.Name())
			return
		}
	}
}

// block halts the symbol for the rest of the run and emits the one EXIT.
func (e *Engine) block(ctx context.Context, st *SymbolState, price float64, reason string) {
	st.Blocked = true
	metrics.BlockedSymbolsTotal.Inc()
	e.log.Info().
		Str("sym", st.Symbol).
		Str("reason", reason).
		Float64("realized", st.RealizedPnL).
		Msg("symbol blocked")

	tr := signal.New(st.Symbol, signal.Exit, signal.Flat, 0, price)
	e.deliver(ctx, tr)
}

func (e *Engine) deliver(ctx context.Context, tr signal.Trade) {
	var err error
	switch tr.Action {
	case signal.Buy:
		err = e.gw.Buy(ctx, tr)
	case signal.Sell:
		err = e.gw.Sell(ctx, tr)
	case signal.Exit:
		err = e.gw.Exit(ctx, tr)
	}
	metrics.SignalsTotal.WithLabelValues(tr.Symbol, string(tr.Action)).Inc()
	if e.journal != nil {
		e.journal.Record(tr)
	}
	if err != nil {
		metrics.GatewayErrorsTotal.WithLabelValues(e.gw.Name()).Inc()
		e.log.Error().Err(err).Str("sym", tr.Symbol).Str("action", string(tr.Action)).Msg("gateway delivery failed")
	}
}
