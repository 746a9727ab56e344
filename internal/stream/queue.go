package stream

import (
	"sync"

	"github.com/gireeshr/grait-trade-bot/internal/alert"
)

// queue is an unbounded FIFO for one symbol's alerts. The tailer goroutine
// pushes, the merger cadence loop drains; neither ever blocks on the other.
type queue struct {
	mu    sync.Mutex
	items []alert.Alert
}

func (q *queue) push(a alert.Alert) {
	q.mu.Lock()
	q.items = append(q.items, a)
	q.mu.Unlock()
}

// drain returns every queued item and empties the queue.
func (q *queue) drain() []alert.Alert {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}
