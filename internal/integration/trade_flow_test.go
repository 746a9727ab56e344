package integration

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/gireeshr/grait-trade-bot/internal/alert"
	"github.com/gireeshr/grait-trade-bot/internal/engine"
	"github.com/gireeshr/grait-trade-bot/internal/signal"
	"github.com/gireeshr/grait-trade-bot/internal/stream"
	"github.com/gireeshr/grait-trade-bot/internal/tail"
	"github.com/gireeshr/grait-trade-bot/internal/trend"
)

type captureGateway struct {
	mu    sync.Mutex
	calls []signal.Trade
}

func (g *captureGateway) Name() string { return "capture" }

func (g *captureGateway) Buy(ctx context.Context, t signal.Trade) error  { return g.record(t) }
func (g *captureGateway) Sell(ctx context.Context, t signal.Trade) error { return g.record(t) }
func (g *captureGateway) Exit(ctx context.Context, t signal.Trade) error { return g.record(t) }

func (g *captureGateway) record(t signal.Trade) error {
	g.mu.Lock()
	g.calls = append(g.calls, t)
	g.mu.Unlock()
	return nil
}

func (g *captureGateway) snapshot() []signal.Trade {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]signal.Trade, len(g.calls))
	copy(out, g.calls)
	return out
}

func writeAlert(t *testing.T, path string, symbol string, id int, price float64, ts time.Time) {
	t.Helper()
	rec := alert.Alert{
		Symbol: symbol,
		Price:  price,
		SMA20:  price - 1,
		EMA20:  price,
		EMA9:   price + 1,
		Ts:     ts,
		ID:     id,
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(rec.FormatLine() + "\n"); err != nil {
		t.Fatalf("append %s: %v", path, err)
	}
}

// Exercises the whole pipeline: alert files on disk, tailers merging into
// batches, the engine turning ticks into trade intents, and the journal
// recording what the gateway saw.
func TestFileToSignalFlow(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dir := t.TempDir()
	const suffix = "20250815"
	aaplPath := alert.SourcePath(dir, "AAPL", suffix)
	msftPath := alert.SourcePath(dir, "MSFT", suffix)

	// Per-symbol order is what matters: AAPL walks 100 -> 101 -> 99.5
	// (baseline, BUY, SELL) and MSFT walks 50 -> 50.5 (baseline, BUY).
	base := time.Date(2025, 8, 15, 9, 30, 0, 0, time.UTC)
	writeAlert(t, aaplPath, "AAPL", 1, 100, base)
	writeAlert(t, aaplPath, "AAPL", 2, 101, base.Add(time.Second))
	writeAlert(t, aaplPath, "AAPL", 3, 99.5, base.Add(2*time.Second))
	writeAlert(t, msftPath, "MSFT", 1, 50, base)
	writeAlert(t, msftPath, "MSFT", 2, 50.5, base.Add(time.Second))

	gw := &captureGateway{}
	journalPath := filepath.Join(t.TempDir(), "signals.jsonl")
	journal, err := engine.NewJournal(journalPath)
	if err != nil {
		t.Fatalf("NewJournal returned error: %v", err)
	}
	defer journal.Close()

	eng := engine.New([]string{"AAPL", "MSFT"}, trend.Stacked{}, gw, zerolog.Nop(),
		engine.WithJournal(journal))

	merger := stream.NewMerger(
		map[string]string{"AAPL": aaplPath, "MSFT": msftPath},
		zerolog.Nop(),
		stream.WithCadence(10*time.Millisecond),
		stream.WithTailerOptions(tail.WithPollInterval(5*time.Millisecond), tail.WithBackfill()),
	)

	batches := make(chan []alert.Alert, 16)
	go func() { _ = merger.Run(ctx, batches) }()
	go func() { _ = eng.Run(ctx, batches) }()

	waitFor(t, ctx, func() bool { return len(gw.snapshot()) == 3 }, "three trade signals")
	waitFor(t, ctx, func() bool { return journalLines(t, journalPath) == 3 }, "three journal lines")
	cancel()

	var aapl, msft []signal.Action
	for _, tr := range gw.snapshot() {
		switch tr.Symbol {
		case "AAPL":
			aapl = append(aapl, tr.Action)
		case "MSFT":
			msft = append(msft, tr.Action)
		default:
			t.Fatalf("signal for unexpected symbol: %+v", tr)
		}
	}
	if len(aapl) != 2 || aapl[0] != signal.Buy || aapl[1] != signal.Sell {
		t.Fatalf("unexpected AAPL sequence: %v", aapl)
	}
	if len(msft) != 1 || msft[0] != signal.Buy {
		t.Fatalf("unexpected MSFT sequence: %v", msft)
	}

	for _, tr := range gw.snapshot() {
		if tr.ID == "" || tr.Ts.IsZero() {
			t.Fatalf("signal missing id or timestamp: %+v", tr)
		}
	}
}

// journalLines counts fully written JSON records in the signal journal.
func journalLines(t *testing.T, path string) int {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()
	var n int
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var tr signal.Trade
		if err := json.Unmarshal(sc.Bytes(), &tr); err != nil {
			continue
		}
		n++
	}
	return n
}

func waitFor(t *testing.T, ctx context.Context, cond func() bool, what string) {
	t.Helper()
	for !cond() {
		select {
		case <-ctx.Done():
			t.Fatalf("timed out waiting for %s", what)
		case <-time.After(5 * time.Millisecond):
		}
	}
}
