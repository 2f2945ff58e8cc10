package mock

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/a-bjn/sudexpert-storefront/internal/notifier/sender"
)

// Sender is a sender implementation that logs emails and always succeeds.
// It simulates a 10ms delay to mimic real delivery latency.
type Sender struct {
	logger *slog.Logger
}

// NewSender creates a new mock sender.
func NewSender(logger *slog.Logger) *Sender {
	return &Sender{logger: logger}
}

// Name returns the name of this sender.
func (s *Sender) Name() string {
	return "mock"
}

// Send logs the email details and simulates a 10ms delivery delay.
func (s *Sender) Send(ctx context.Context, email *sender.Email) error {
	time.Sleep(10 * time.Millisecond)

	s.logger.InfoContext(ctx, "mock sender: email sent",
		slog.String("to", strings.Join(email.To, ",")),
		slog.String("subject", email.Subject),
	)

	return nil
}
