package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/gireeshr/grait-trade-bot/internal/signal"
)

const defaultWebhookTimeout = 5 * time.Second

// webhookPayload is the body the broker-side webhook expects.
type webhookPayload struct {
	Ticker    string `json:"ticker"`
	Action    string `json:"action"`
	Sentiment string `json:"sentiment,omitempty"`
	Quantity  int    `json:"quantity,omitempty"`
}

// Webhook POSTs each signal to a broker webhook URL. A per-symbol URL map
// overrides the default URL, matching the one-webhook-per-broker setup the
// alert producer uses.
type Webhook struct {
	defaultURL string
	bySymbol   map[string]string
	client     *http.Client
	log        zerolog.Logger
}

// WebhookOption configures Webhook construction.
type WebhookOption func(*Webhook)

// WithSymbolURLs installs per-symbol webhook overrides.
func WithSymbolURLs(urls map[string]string) WebhookOption {
	return func(w *Webhook) {
		if len(urls) > 0 {
			w.bySymbol = urls
		}
	}
}

// WithTimeout overrides the default 5s request timeout.
func WithTimeout(d time.Duration) WebhookOption {
	return func(w *Webhook) {
		if d > 0 {
			w.client.Timeout = d
		}
	}
}

// NewWebhook builds a webhook gateway posting to defaultURL.
func NewWebhook(defaultURL string, log zerolog.Logger, opts ...WebhookOption) *Webhook {
	w := &Webhook{
		defaultURL: defaultURL,
		client:     &http.Client{Timeout: defaultWebhookTimeout},
		log:        log,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Webhook) Name() string { return "webhook" }

func (w *Webhook) Buy(ctx context.Context, t signal.Trade) error  { return w.deliver(ctx, t) }
func (w *Webhook) Sell(ctx context.Context, t signal.Trade) error { return w.deliver(ctx, t) }

// Exit posts only ticker and action; sentiment and quantity are omitted the
// way the producer's exit alerts are.
func (w *Webhook) Exit(ctx context.Context, t signal.Trade) error {
	t.Sentiment = ""
	t.Quantity = 0
	return w.deliver(ctx, t)
}

func (w *Webhook) deliver(ctx context.Context, t signal.Trade) error {
	url := w.urlFor(t.Symbol)
	if url == "" {
		return fmt.Errorf("no webhook url configured for %s", t.Symbol)
	}
	body, err := json.Marshal(webhookPayload{
		Ticker:    t.Symbol,
		Action:    string(t.Action),
		Sentiment: string(t.Sentiment),
		Quantity:  t.Quantity,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("webhook returned %s", resp.Status)
	}
	w.log.Debug().Str("sym", t.Symbol).Str("action", string(t.Action)).Msg("webhook delivered")
	return nil
}

func (w *Webhook) urlFor(symbol string) string {
	if url, ok := w.bySymbol[symbol]; ok && url != "" {
		return url
	}
	return w.defaultURL
}
