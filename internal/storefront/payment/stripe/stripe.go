package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/a-bjn/sudexpert-storefront/internal/storefront/payment"
	"github.com/a-bjn/sudexpert-storefront/pkg/httpclient"
)

const defaultAPIBase = "https://api.stripe.com"

// Provider confirms payment intents against the Stripe REST API.
type Provider struct {
	apiBase   string
	secretKey string
	http      *httpclient.Client
	logger    *slog.Logger
}

// NewProvider creates a Stripe payment provider. apiBase may be empty, in
// which case the public Stripe endpoint is used; tests point it at a local
// httptest server.
func NewProvider(apiBase, secretKey string, client *httpclient.Client, logger *slog.Logger) *Provider {
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	return &Provider{
		apiBase:   strings.TrimRight(apiBase, "/"),
		secretKey: secretKey,
		http:      client,
		logger:    logger,
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "stripe"
}

// intentResponse is the subset of Stripe's payment intent object the
// storefront reads.
type intentResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Amount int64  `json:"amount"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Confirm confirms the intent identified by the client secret. The intent ID
// is the client secret's prefix before "_secret_".
func (p *Provider) Confirm(ctx context.Context, input payment.ConfirmInput) (*payment.ConfirmResult, error) {
	intentID, err := intentIDFromClientSecret(input.ClientSecret)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("client_secret", input.ClientSecret)
	if input.ReturnURL != "" {
		form.Set("return_url", input.ReturnURL)
	}

	endpoint := fmt.Sprintf("%s/v1/payment_intents/%s/confirm", p.apiBase, intentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create confirm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(p.secretKey, "")

	resp, err := p.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("call payment processor: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var body intentResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode confirm response: %w", err)
	}

	// Processor declines arrive as an error object, not a transport failure.
	if body.Error != nil {
		return &payment.ConfirmResult{ErrorMessage: body.Error.Message}, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("payment processor returned status %d", resp.StatusCode)
	}

	return &payment.ConfirmResult{
		Intent: &payment.Intent{
			ID:     body.ID,
			Status: body.Status,
			Amount: body.Amount,
		},
	}, nil
}

// intentIDFromClientSecret extracts the intent ID ("pi_...") from a client
// secret of the form "pi_..._secret_...".
func intentIDFromClientSecret(clientSecret string) (string, error) {
	id, _, found := strings.Cut(clientSecret, "_secret_")
	if !found || id == "" {
		return "", fmt.Errorf("malformed client secret")
	}
	return id, nil
}
