package client

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/storefront/internal/domain"
)

// OrderSubmission is the payload handed to the order gateway.
type OrderSubmission struct {
	SessionID      string            `json:"session_id"`
	Email          string            `json:"email"`
	Items          []domain.CartItem `json:"items"`
	ShippingMethod string            `json:"shipping_method"`
	CouponCode     string            `json:"coupon_code,omitempty"`
	Totals         domain.Totals     `json:"totals"`
}

// SimulatedOrderGateway stands in for the order submission API, which has
// no backend yet. It holds the request for the configured processing time
// and issues an order id locally.
type SimulatedOrderGateway struct {
	delay  time.Duration
	logger *slog.Logger
}

// NewSimulatedOrderGateway builds the stub with the given processing delay.
func NewSimulatedOrderGateway(delay time.Duration, logger *slog.Logger) *SimulatedOrderGateway {
	return &SimulatedOrderGateway{delay: delay, logger: logger}
}

// Submit simulates payment processing and returns the generated order id.
// Cancelling the context aborts the wait.
func (g *SimulatedOrderGateway) Submit(ctx context.Context, sub OrderSubmission) (string, error) {
	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	orderID := fmt.Sprintf("ORD-%s", uuid.NewString())
	g.logger.Info("order accepted",
		slog.String("order_id", orderID),
		slog.String("session_id", sub.SessionID),
		slog.Int("lines", len(sub.Items)),
		slog.Int64("total", sub.Totals.Total),
	)
	return orderID, nil
}
