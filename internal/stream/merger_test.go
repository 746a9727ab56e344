package stream

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/gireeshr/grait-trade-bot/internal/alert"
	"github.com/gireeshr/grait-trade-bot/internal/tail"
)

func writeAlert(t *testing.T, path, symbol string, id int, price float64, ts string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	fmt.Fprintf(f, "%s - MA Alert - %d - price: %.2f - SMA_20: 100.00,  EMA_20: 100.00, EMA_9: 100.00 - %s\n",
		symbol, id, price, ts)
	f.Close()
}

func TestMergerBatchesAcrossSymbols(t *testing.T) {
	dir := t.TempDir()
	aaplPath := filepath.Join(dir, "AAPL_price_20250815.txt")
	tslaPath := filepath.Join(dir, "TSLA_price_20250815.txt")
	if err := os.WriteFile(aaplPath, nil, 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	if err := os.WriteFile(tslaPath, nil, 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	merger := NewMerger(
		map[string]string{"AAPL": aaplPath, "TSLA": tslaPath},
		zerolog.Nop(),
		WithCadence(10*time.Millisecond),
		WithTailerOptions(tail.WithPollInterval(5*time.Millisecond)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := make(chan []alert.Alert, 16)
	done := make(chan error, 1)
	go func() { done <- merger.Run(ctx, out) }()

	writeAlert(t, aaplPath, "AAPL", 1, 100, "20250815100000")
	writeAlert(t, tslaPath, "TSLA", 1, 250, "20250815100000")
	writeAlert(t, aaplPath, "AAPL", 2, 101, "20250815100100")

	got := make(map[string]int)
	deadline := time.After(2 * time.Second)
	for len(got) < 2 || got["AAPL"] < 2 {
		select {
		case batch := <-out:
			if len(batch) == 0 {
				t.Fatalf("merger emitted an empty batch")
			}
			for _, a := range batch {
				got[a.Symbol]++
			}
		case <-deadline:
			t.Fatalf("timed out, received %v", got)
		}
	}
	if got["AAPL"] != 2 || got["TSLA"] != 1 {
		t.Fatalf("unexpected counts: %v", got)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Fatalf("unexpected run error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("merger did not stop after cancellation")
	}
}

func TestMergerPerSymbolOrderPreserved(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "SPY_price_20250815.txt")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	merger := NewMerger(
		map[string]string{"SPY": path},
		zerolog.Nop(),
		WithCadence(10*time.Millisecond),
		WithTailerOptions(tail.WithPollInterval(5*time.Millisecond)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := make(chan []alert.Alert, 16)
	go func() { _ = merger.Run(ctx, out) }()

	for i := 1; i <= 5; i++ {
		writeAlert(t, path, "SPY", i, 500+float64(i), fmt.Sprintf("202508151000%02d", i))
	}

	var ids []int
	deadline := time.After(2 * time.Second)
	for len(ids) < 5 {
		select {
		case batch := <-out:
			for _, a := range batch {
				ids = append(ids, a.ID)
			}
		case <-deadline:
			t.Fatalf("timed out, received %v", ids)
		}
	}
	for i, id := range ids {
		if id != i+1 {
			t.Fatalf("per-symbol order broken: %v", ids)
		}
	}
}

func TestQueueDrainEmpties(t *testing.T) {
	q := &queue{}
	if got := q.drain(); got != nil {
		t.Fatalf("expected nil drain on empty queue, got %v", got)
	}
	q.push(alert.Alert{Symbol: "AAPL", ID: 1})
	q.push(alert.Alert{Symbol: "AAPL", ID: 2})
	got := q.drain()
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 2 {
		t.Fatalf("unexpected drain: %v", got)
	}
	if got := q.drain(); got != nil {
		t.Fatalf("queue should be empty after drain, got %v", got)
	}
}
