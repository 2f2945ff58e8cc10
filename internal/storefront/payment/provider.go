package payment

import "context"

// Intent statuses reported by the processor.
const (
	StatusSucceeded      = "succeeded"
	StatusProcessing     = "processing"
	StatusRequiresAction = "requires_action"
)

// ConfirmInput holds the parameters for confirming a payment intent.
type ConfirmInput struct {
	// ClientSecret identifies the intent, as handed out by the backend when
	// the intent was created.
	ClientSecret string

	// ReturnURL is where the processor sends the customer after any
	// off-session authentication step. It encodes the order code.
	ReturnURL string
}

// Intent is the processor's view of a payment intent after confirmation.
type Intent struct {
	ID     string
	Status string
	Amount int64
}

// ConfirmResult mirrors the processor's confirmation response: either an
// error message or a payment intent, never both.
type ConfirmResult struct {
	Intent       *Intent
	ErrorMessage string
}

// Provider is the interface to the external payment processor.
type Provider interface {
	// Name returns the provider name (e.g. "stripe", "mock").
	Name() string

	// Confirm attempts to confirm the payment intent with the processor.
	// A processor-declined payment is reported through ConfirmResult, not
	// through the error return; the error is reserved for transport and
	// protocol failures.
	Confirm(ctx context.Context, input ConfirmInput) (*ConfirmResult, error)
}
