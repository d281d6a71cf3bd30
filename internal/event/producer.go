// Package event publishes storefront domain events to Kafka.
package event

import (
	"context"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/logger"
)

const (
	TopicCartUpdated       = "storefront.cart.updated"
	TopicCartCleared       = "storefront.cart.cleared"
	TopicCheckoutSubmitted = "storefront.checkout.submitted"

	source        = "storefront"
	aggregateCart = "cart"
)

// CartUpdatedData is the payload for cart updated events.
type CartUpdatedData struct {
	SessionID string `json:"session_id"`
	ItemCount int    `json:"item_count"`
	Lines     int    `json:"lines"`
	Total     int64  `json:"total"`
}

// CartClearedData is the payload for cart cleared events.
type CartClearedData struct {
	SessionID string `json:"session_id"`
}

// CheckoutSubmittedData is the payload for checkout submitted events.
type CheckoutSubmittedData struct {
	OrderID        string `json:"order_id"`
	SessionID      string `json:"session_id"`
	ShippingMethod string `json:"shipping_method"`
	CouponCode     string `json:"coupon_code,omitempty"`
	Total          int64  `json:"total"`
}

// Producer publishes storefront events. Publish failures are reported to
// the caller, who logs and moves on; events never block a user operation.
type Producer struct {
	producer *kafka.Producer
	logger   *slog.Logger
}

// NewProducer wraps the shared Kafka producer.
func NewProducer(p *kafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{producer: p, logger: logger}
}

// PublishCartUpdated emits an event describing the cart after a mutation.
func (p *Producer) PublishCartUpdated(ctx context.Context, cart *domain.Cart) error {
	data := CartUpdatedData{
		SessionID: cart.SessionID,
		ItemCount: cart.ItemCount(),
		Lines:     len(cart.Items),
		Total:     cart.TotalAmount(),
	}
	evt, err := kafka.NewEvent("cart.updated", cart.SessionID, aggregateCart, source, data)
	if err != nil {
		return err
	}
	evt.WithCorrelationID(logger.CorrelationIDFromContext(ctx))
	return p.producer.Publish(ctx, TopicCartUpdated, evt)
}

// PublishCartCleared emits an event when a session's cart is emptied.
func (p *Producer) PublishCartCleared(ctx context.Context, sessionID string) error {
	evt, err := kafka.NewEvent("cart.cleared", sessionID, aggregateCart, source, CartClearedData{SessionID: sessionID})
	if err != nil {
		return err
	}
	evt.WithCorrelationID(logger.CorrelationIDFromContext(ctx))
	return p.producer.Publish(ctx, TopicCartCleared, evt)
}

// PublishCheckoutSubmitted emits an event when an order is accepted.
func (p *Producer) PublishCheckoutSubmitted(ctx context.Context, data CheckoutSubmittedData) error {
	evt, err := kafka.NewEvent("checkout.submitted", data.SessionID, "checkout", source, data)
	if err != nil {
		return err
	}
	evt.WithCorrelationID(logger.CorrelationIDFromContext(ctx))
	return p.producer.Publish(ctx, TopicCheckoutSubmitted, evt)
}
