package domain

// Checkout step names. The flow has exactly two steps; the terminal state is
// the redirect to the order confirmation page.
const (
	StepDelivery = "delivery"
	StepPayment  = "payment"
)

// DeliveryInfo holds the address and contact fields collected on the delivery
// step. It is sent verbatim to the backend as part of order creation and is
// not persisted beyond the checkout session.
type DeliveryInfo struct {
	Name       string `json:"deliveryName"`
	Email      string `json:"deliveryEmail"`
	Phone      string `json:"deliveryPhone"`
	Address    string `json:"deliveryAddress"`
	City       string `json:"deliveryCity"`
	County     string `json:"deliveryCounty"`
	PostalCode string `json:"deliveryPostalCode"`
	Country    string `json:"deliveryCountry"`
	Notes      string `json:"deliveryNotes,omitempty"`
}

// Order is the storefront's view of a backend-owned order. Everything beyond
// these fields is opaque to the checkout flow.
type Order struct {
	ID        int64  `json:"id"`
	OrderCode string `json:"orderCode"`
	Total     int64  `json:"total"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// PaymentIntent is the storefront's view of a processor-owned payment intent.
type PaymentIntent struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId,omitempty"`
	Status          string `json:"status,omitempty"`
}

// CheckoutState is the per-session checkout progress persisted in the bridge
// between the delivery and payment steps.
type CheckoutState struct {
	Step         string `json:"step"`
	OrderID      int64  `json:"orderId,omitempty"`
	OrderCode    string `json:"orderCode,omitempty"`
	Total        int64  `json:"total,omitempty"`
	ClientSecret string `json:"clientSecret,omitempty"`
}

// Redirect is a navigation instruction produced by the checkout flow. The
// HTTP layer carries it both as a Location header and in the response body.
type Redirect struct {
	Path string `json:"redirect_url"`
}
