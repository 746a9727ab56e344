package engine

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/gireeshr/grait-trade-bot/internal/signal"
)

// Journal appends emitted signals as JSON lines for later analysis. It is
// an audit artifact, not state: nothing is read back during a run.
type Journal struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// NewJournal creates/opens the target file and returns a journal.
func NewJournal(path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &Journal{file: file, enc: json.NewEncoder(file)}, nil
}

// Record writes a single signal to the journal.
func (j *Journal) Record(tr signal.Trade) {
	j.mu.Lock()
	defer j.mu.Unlock()
	_ = j.enc.Encode(tr)
}

// Close flushes and closes the underlying file.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file == nil {
		return nil
	}
	err := j.file.Close()
	j.file = nil
	return err
}
