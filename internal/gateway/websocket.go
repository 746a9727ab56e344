package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/gireeshr/grait-trade-bot/internal/signal"
)

const (
	wsHandshakeTimeout = 10 * time.Second
	wsWriteTimeout     = 5 * time.Second
	wsPingInterval     = 15 * time.Second
)

// WebSocket streams signals as JSON frames over a persistent websocket to
// an order-execution endpoint. The connection is dialed lazily and redialed
// on the next delivery after a write failure; a failed delivery itself is
// reported, never retried.
type WebSocket struct {
	url string
	log zerolog.Logger

	mu       sync.Mutex
	conn     *websocket.Conn
	pingStop chan struct{}
}

// NewWebSocket builds a websocket gateway targeting url.
func NewWebSocket(url string, log zerolog.Logger) *WebSocket {
	return &WebSocket{url: url, log: log}
}

func (w *WebSocket) Name() string { return "websocket" }

func (w *WebSocket) Buy(ctx context.Context, t signal.Trade) error  { return w.deliver(ctx, t) }
func (w *WebSocket) Sell(ctx context.Context, t signal.Trade) error { return w.deliver(ctx, t) }
func (w *WebSocket) Exit(ctx context.Context, t signal.Trade) error { return w.deliver(ctx, t) }

func (w *WebSocket) deliver(ctx context.Context, t signal.Trade) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.conn == nil {
		if err := w.dial(ctx); err != nil {
			return err
		}
	}
	w.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := w.conn.WriteJSON(t); err != nil {
		w.dropConn()
		return err
	}
	return nil
}

func (w *WebSocket) dial(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: wsHandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, w.url, nil)
	if err != nil {
		return err
	}
	w.conn = conn
	w.pingStop = make(chan struct{})
	go w.pingLoop(conn, w.pingStop)
	w.log.Info().Str("url", w.url).Msg("order gateway connected")
	return nil
}

func (w *WebSocket) pingLoop(conn *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			w.mu.Lock()
			if w.conn != conn {
				w.mu.Unlock()
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			if err != nil {
				w.dropConn()
			}
			w.mu.Unlock()
			if err != nil {
				w.log.Warn().Err(err).Msg("order gateway ping failed")
				return
			}
		case <-stop:
			return
		}
	}
}

// dropConn closes the current connection; callers must hold the mutex.
func (w *WebSocket) dropConn() {
	if w.conn == nil {
		return
	}
	close(w.pingStop)
	w.conn.Close()
	w.conn = nil
}

// Close tears the connection down.
func (w *WebSocket) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.dropConn()
	return nil
}
