package sender

import "context"

// Email is a rendered message ready for delivery.
type Email struct {
	To       []string
	Subject  string
	TextBody string
	HTMLBody string
}

// Sender defines the interface for delivering contact emails.
type Sender interface {
	Name() string
	Send(ctx context.Context, email *Email) error
}
