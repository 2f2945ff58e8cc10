package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/a-bjn/sudexpert-storefront/internal/storefront/domain"
	pkgkafka "github.com/a-bjn/sudexpert-storefront/pkg/kafka"
	"github.com/a-bjn/sudexpert-storefront/pkg/logger"
)

// Kafka topics for storefront domain events.
const (
	TopicCartUpdated       = "storefront.cart.updated"
	TopicCartCleared       = "storefront.cart.cleared"
	TopicCheckoutCompleted = "storefront.checkout.completed"
)

const (
	aggregateTypeCart     = "cart"
	aggregateTypeCheckout = "checkout"
	source                = "storefront"
)

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	SessionID  string            `json:"session_id"`
	Items      []domain.CartItem `json:"items"`
	TotalItems int               `json:"total_items"`
	TotalPrice int64             `json:"total_price"`
}

// CartClearedData is the payload for a cart.cleared event.
type CartClearedData struct {
	SessionID string `json:"session_id"`
}

// CheckoutCompletedData is the payload for a checkout.completed event.
type CheckoutCompletedData struct {
	SessionID       string `json:"session_id"`
	OrderID         int64  `json:"order_id"`
	OrderCode       string `json:"order_code"`
	Total           int64  `json:"total"`
	PaymentIntentID string `json:"payment_intent_id"`
}

// Producer publishes storefront domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates an event producer for the storefront.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishCartUpdated publishes a cart.updated event for the session.
func (p *Producer) PublishCartUpdated(ctx context.Context, sessionID string, cart *domain.Cart) error {
	data := CartUpdatedData{
		SessionID:  sessionID,
		Items:      cart.Items,
		TotalItems: cart.TotalItems(),
		TotalPrice: cart.TotalPrice(),
	}

	evt, err := pkgkafka.NewEvent("cart.updated", sessionID, aggregateTypeCart, source, data)
	if err != nil {
		return fmt.Errorf("build cart.updated event: %w", err)
	}
	evt.WithCorrelationID(logger.CorrelationIDFromContext(ctx))

	return p.kafka.Publish(ctx, TopicCartUpdated, evt)
}

// PublishCartCleared publishes a cart.cleared event for the session.
func (p *Producer) PublishCartCleared(ctx context.Context, sessionID string) error {
	evt, err := pkgkafka.NewEvent("cart.cleared", sessionID, aggregateTypeCart, source, CartClearedData{SessionID: sessionID})
	if err != nil {
		return fmt.Errorf("build cart.cleared event: %w", err)
	}
	evt.WithCorrelationID(logger.CorrelationIDFromContext(ctx))

	return p.kafka.Publish(ctx, TopicCartCleared, evt)
}

// PublishCheckoutCompleted publishes a checkout.completed event.
func (p *Producer) PublishCheckoutCompleted(ctx context.Context, data CheckoutCompletedData) error {
	evt, err := pkgkafka.NewEvent("checkout.completed", data.OrderCode, aggregateTypeCheckout, source, data)
	if err != nil {
		return fmt.Errorf("build checkout.completed event: %w", err)
	}
	evt.WithCorrelationID(logger.CorrelationIDFromContext(ctx))

	return p.kafka.Publish(ctx, TopicCheckoutCompleted, evt)
}
