// Package tail turns growth of a per-symbol alert file into a stream of
// parsed records, tolerant of rotation, truncation, and absence.
package tail

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/gireeshr/grait-trade-bot/internal/alert"
	"github.com/gireeshr/grait-trade-bot/internal/metrics"
)

const defaultPollInterval = time.Second

// Tailer follows one source file and emits parsed alerts in timestamp order.
// The cursor (byte offset) and the watermark (last emitted timestamp) are
// owned exclusively by this instance; there is no shared dedup state.
type Tailer struct {
	path     string
	symbol   string
	log      zerolog.Logger
	poll     time.Duration
	backfill bool
	watch    bool

	pos    int64
	lastTs time.Time
}

// Option configures Tailer construction.
type Option func(*Tailer)

// WithPollInterval overrides the default 1s polling cadence.
func WithPollInterval(d time.Duration) Option {
	return func(t *Tailer) {
		if d > 0 {
			t.poll = d
		}
	}
}

// WithBackfill starts reading from offset 0 instead of end-of-file.
func WithBackfill() Option {
	return func(t *Tailer) { t.backfill = true }
}

// WithWatch enables an fsnotify wake-up on write events. Polling continues
// either way; the watcher only shortens latency.
func WithWatch() Option {
	return func(t *Tailer) { t.watch = true }
}

// New builds a tailer for one symbol's source file.
func New(path, symbol string, log zerolog.Logger, opts ...Option) *Tailer {
	t := &Tailer{
		path:   path,
		symbol: strings.ToUpper(symbol),
		log:    log.With().Str("symbol", symbol).Logger(),
		poll:   defaultPollInterval,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Run follows the file until ctx is canceled, sending parsed alerts to out.
// It never returns for data-level problems: malformed lines, stale records,
// and a missing file are all absorbed and counted.
func (t *Tailer) Run(ctx context.Context, out chan<- alert.Alert) error {
	events := t.startWatcher(ctx)

	if err := t.waitForFile(ctx, events); err != nil {
		return err
	}

	ticker := time.NewTicker(t.poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if !t.relevant(ev) {
				continue
			}
		}
		if err := t.scan(ctx, out); err != nil {
			return err
		}
	}
}

// waitForFile blocks until the source exists, then places the cursor at its
// current end (or 0 in backfill mode).
func (t *Tailer) waitForFile(ctx context.Context, events <-chan fsnotify.Event) error {
	ticker := time.NewTicker(t.poll)
	defer ticker.Stop()
	for {
		if fi, err := os.Stat(t.path); err == nil {
			if !t.backfill {
				t.pos = fi.Size()
			}
			t.log.Debug().Str("path", t.path).Int64("offset", t.pos).Msg("source found, tailing")
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case _, ok := <-events:
			if !ok {
				events = nil
			}
		}
	}
}

// scan reads any new bytes past the cursor, handles truncation, and emits
// records that clear the watermark.
func (t *Tailer) scan(ctx context.Context, out chan<- alert.Alert) error {
	fi, err := os.Stat(t.path)
	if err != nil {
		// Absent or unreadable mid-run: treated as "no new data".
		return nil
	}
	size := fi.Size()

	if size < t.pos {
		// Truncated or rewritten in place: replay the whole new content.
		t.log.Debug().Int64("size", size).Int64("cursor", t.pos).Msg("source truncated, resetting cursor")
		t.pos = 0
	}
	if size == t.pos {
		return nil
	}

	file, err := os.Open(t.path)
	if err != nil {
		return nil
	}
	defer file.Close()

	if _, err := file.Seek(t.pos, io.SeekStart); err != nil {
		return nil
	}
	buf := make([]byte, size-t.pos)
	n, err := io.ReadFull(file, buf)
	if err != nil && n == 0 {
		return nil
	}
	chunk := string(buf[:n])

	// Only complete lines are consumed; a trailing partial line stays
	// behind the cursor until the writer finishes it.
	cut := strings.LastIndexByte(chunk, '\n')
	if cut < 0 {
		return nil
	}
	t.pos += int64(cut + 1)

	for _, line := range strings.Split(chunk[:cut], "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, ok := alert.ParseLine(line)
		if !ok {
			metrics.ParseErrorsTotal.WithLabelValues(t.symbol).Inc()
			continue
		}
		if rec.Symbol != t.symbol {
			continue
		}
		if !rec.Ts.After(t.lastTs) {
			metrics.StaleDropsTotal.WithLabelValues(t.symbol).Inc()
			continue
		}
		t.lastTs = rec.Ts
		select {
		case out <- rec:
			metrics.AlertsTotal.WithLabelValues(t.symbol).Inc()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// startWatcher wires an fsnotify watcher on the source directory. Any
// failure degrades to pure polling.
func (t *Tailer) startWatcher(ctx context.Context) <-chan fsnotify.Event {
	if !t.watch {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		t.log.Warn().Err(err).Msg("fsnotify unavailable, polling only")
		return nil
	}
	if err := watcher.Add(filepath.Dir(t.path)); err != nil {
		t.log.Warn().Err(err).Msg("fsnotify watch failed, polling only")
		watcher.Close()
		return nil
	}
	events := make(chan fsnotify.Event, 16)
	go func() {
		defer watcher.Close()
		defer close(events)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				select {
				case events <- ev:
				default:
					// A pending wake-up is already queued.
				}
			case <-watcher.Errors:
			}
		}
	}()
	return events
}

func (t *Tailer) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != filepath.Clean(t.path) {
		return false
	}
	return ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create)
}
