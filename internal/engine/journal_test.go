package engine

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/gireeshr/grait-trade-bot/internal/signal"
)

func TestJournalRecordsJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "signals.jsonl")
	j, err := NewJournal(path)
	if err != nil {
		t.Fatalf("NewJournal returned error: %v", err)
	}

	first := signal.New("AAPL", signal.Buy, signal.Bullish, 1, 101)
	second := signal.New("AAPL", signal.Sell, signal.Bearish, 1, 99.5)
	j.Record(first)
	j.Record(second)
	if err := j.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer f.Close()

	var got []signal.Trade
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var tr signal.Trade
		if err := json.Unmarshal(sc.Bytes(), &tr); err != nil {
			t.Fatalf("line not JSON: %v", err)
		}
		got = append(got, tr)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].ID != first.ID || got[0].Action != signal.Buy {
		t.Fatalf("unexpected first record: %+v", got[0])
	}
	if got[1].Price != 99.5 || got[1].Sentiment != signal.Bearish {
		t.Fatalf("unexpected second record: %+v", got[1])
	}
}

func TestJournalCloseIdempotent(t *testing.T) {
	j, err := NewJournal(filepath.Join(t.TempDir(), "signals.jsonl"))
	if err != nil {
		t.Fatalf("NewJournal returned error: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("first Close returned error: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("second Close returned error: %v", err)
	}
}
