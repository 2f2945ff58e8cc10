package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/a-bjn/sudexpert-storefront/pkg/kafka"
	"github.com/a-bjn/sudexpert-storefront/pkg/logger"
)

// TopicContactSubmitted carries contact.submitted events.
const TopicContactSubmitted = "notifier.contact.submitted"

// ContactSubmittedData is the payload for a contact.submitted event. The
// message body stays out of the event; downstream consumers only need to know
// a lead arrived and how to find it.
type ContactSubmittedData struct {
	SubmissionID string `json:"submission_id"`
	Email        string `json:"email"`
	Status       string `json:"status"`
}

// Producer publishes notifier domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates an event producer for the notifier.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishContactSubmitted publishes a contact.submitted event.
func (p *Producer) PublishContactSubmitted(ctx context.Context, data ContactSubmittedData) error {
	evt, err := pkgkafka.NewEvent("contact.submitted", data.SubmissionID, "submission", "notifier", data)
	if err != nil {
		return fmt.Errorf("build contact.submitted event: %w", err)
	}
	evt.WithCorrelationID(logger.CorrelationIDFromContext(ctx))

	return p.kafka.Publish(ctx, TopicContactSubmitted, evt)
}
