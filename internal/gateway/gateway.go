// Package gateway delivers trade-intent signals to an external order
// channel. Delivery is fire-and-forget from the engine's perspective:
// failures are reported back for logging but never retried.
package gateway

import (
	"context"

	"github.com/gireeshr/grait-trade-bot/internal/signal"
)

// OrderGateway is the outbound order-delivery capability. The engine calls
// exactly one method per state transition and does not inspect the result
// beyond logging it.
type OrderGateway interface {
	Name() string
	Buy(ctx context.Context, t signal.Trade) error
	Sell(ctx context.Context, t signal.Trade) error
	Exit(ctx context.Context, t signal.Trade) error
}
