// Package stream fans N file tailers into periodic batches of alerts for
// the trading engine.
package stream

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/gireeshr/grait-trade-bot/internal/alert"
	"github.com/gireeshr/grait-trade-bot/internal/metrics"
	"github.com/gireeshr/grait-trade-bot/internal/tail"
)

const defaultCadence = 100 * time.Millisecond

// Merger owns one tailer per source and drains their output into batches on
// a fixed cadence. Ordering within one symbol is timestamp order (the
// tailer's watermark guarantees it); ordering across symbols in a batch is
// unspecified.
type Merger struct {
	sources map[string]string // symbol -> path
	log     zerolog.Logger
	cadence time.Duration
	tailOps []tail.Option
}

// Option configures Merger construction.
type Option func(*Merger)

// WithCadence overrides the default 100ms drain cadence. The cadence is
// independent of (and normally faster than) the tailer poll interval.
func WithCadence(d time.Duration) Option {
	return func(m *Merger) {
		if d > 0 {
			m.cadence = d
		}
	}
}

// WithTailerOptions forwards options to every tailer the merger builds.
func WithTailerOptions(opts ...tail.Option) Option {
	return func(m *Merger) { m.tailOps = opts }
}

// NewMerger builds a merger over the symbol-to-path source mapping.
func NewMerger(sources map[string]string, log zerolog.Logger, opts ...Option) *Merger {
	m := &Merger{
		sources: sources,
		log:     log,
		cadence: defaultCadence,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run starts all tailers and emits non-empty batches to out until ctx is
// canceled. It returns only after every tailer goroutine has stopped, so no
// pollers or file handles outlive the merger.
func (m *Merger) Run(ctx context.Context, out chan<- []alert.Alert) error {
	group, ctx := errgroup.WithContext(ctx)

	symbols := make([]string, 0, len(m.sources))
	queues := make(map[string]*queue, len(m.sources))
	for symbol, path := range m.sources {
		symbols = append(symbols, symbol)
		q := &queue{}
		queues[symbol] = q

		tailer := tail.New(path, symbol, m.log, m.tailOps...)
		ch := make(chan alert.Alert, 64)
		group.Go(func() error {
			return tailer.Run(ctx, ch)
		})
		group.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case a := <-ch:
					q.push(a)
				}
			}
		})
	}
	// Stable iteration keeps same-batch cross-symbol order deterministic,
	// though consumers must not rely on it.
	sort.Strings(symbols)

	group.Go(func() error {
		ticker := time.NewTicker(m.cadence)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
			var batch []alert.Alert
			for _, symbol := range symbols {
				batch = append(batch, queues[symbol].drain()...)
			}
			if len(batch) == 0 {
				continue
			}
			select {
			case out <- batch:
				metrics.BatchesTotal.Inc()
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	return group.Wait()
}
