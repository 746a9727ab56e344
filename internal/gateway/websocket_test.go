package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/gireeshr/grait-trade-bot/internal/signal"
)

func TestWebSocketDeliversJSONFrames(t *testing.T) {
	received := make(chan signal.Trade, 4)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			var tr signal.Trade
			if err := conn.ReadJSON(&tr); err != nil {
				return
			}
			received <- tr
		}
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	gw := NewWebSocket(url, zerolog.Nop())
	defer gw.Close()

	if err := gw.Buy(context.Background(), signal.New("AAPL", signal.Buy, signal.Bullish, 2, 101)); err != nil {
		t.Fatalf("Buy returned error: %v", err)
	}
	if err := gw.Exit(context.Background(), signal.New("AAPL", signal.Exit, signal.Flat, 0, 103)); err != nil {
		t.Fatalf("Exit returned error: %v", err)
	}

	for _, want := range []signal.Action{signal.Buy, signal.Exit} {
		select {
		case tr := <-received:
			if tr.Action != want || tr.Symbol != "AAPL" {
				t.Fatalf("unexpected frame: %+v", tr)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %s frame", want)
		}
	}
}

func TestWebSocketDialFailure(t *testing.T) {
	gw := NewWebSocket("ws://127.0.0.1:1/orders", zerolog.Nop())
	if err := gw.Buy(context.Background(), signal.New("AAPL", signal.Buy, signal.Bullish, 1, 100)); err == nil {
		t.Fatalf("expected dial error")
	}
}
