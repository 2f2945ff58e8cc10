package mock

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/a-bjn/sudexpert-storefront/internal/storefront/payment"
)

// Provider is a payment provider for development and tests. It confirms
// every intent as succeeded unless the client secret carries a "_declined"
// suffix (simulated decline) or a "_processing" suffix (intent stuck in
// processing, which the checkout treats as not completed).
type Provider struct{}

// NewProvider creates a mock payment provider.
func NewProvider() *Provider {
	return &Provider{}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "mock"
}

// Confirm simulates a processor confirmation call.
func (p *Provider) Confirm(_ context.Context, input payment.ConfirmInput) (*payment.ConfirmResult, error) {
	if strings.HasSuffix(input.ClientSecret, "_declined") {
		return &payment.ConfirmResult{
			ErrorMessage: "Your card was declined.",
		}, nil
	}

	if strings.HasSuffix(input.ClientSecret, "_processing") {
		return &payment.ConfirmResult{
			Intent: &payment.Intent{
				ID:     "mock_pi_" + uuid.New().String(),
				Status: payment.StatusProcessing,
			},
		}, nil
	}

	return &payment.ConfirmResult{
		Intent: &payment.Intent{
			ID:     "mock_pi_" + uuid.New().String(),
			Status: payment.StatusSucceeded,
		},
	}, nil
}
