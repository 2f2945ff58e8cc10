package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-bjn/sudexpert-storefront/internal/storefront/domain"
	"github.com/a-bjn/sudexpert-storefront/pkg/httpclient"
)

// HTTPDoer executes HTTP requests. Both httpclient.Client and
// httpclient.CircuitBreakerClient satisfy this.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client is the typed gateway to the external commerce backend. Every method
// makes exactly one HTTP attempt: a failure is surfaced to the caller, never
// retried here.
type Client struct {
	baseURL string
	http    HTTPDoer
	logger  *slog.Logger
}

// NewClient creates a backend client for the given base URL
// (e.g. "http://localhost:8080/api").
func NewClient(baseURL string, doer HTTPDoer, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    doer,
		logger:  logger,
	}
}

// do builds and executes one request against the backend. A bearer token is
// attached when non-empty. 2xx responses are decoded into out (skipped when
// out is nil or the status is 204 No Content); non-2xx responses become
// errors carrying the backend's message.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create %s %s request: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("call backend %s %s: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httpclient.ParseResponseError(resp)
	}

	defer func() { _ = resp.Body.Close() }()

	// 204 carries no body; the zero value of out is the result.
	if resp.StatusCode == http.StatusNoContent || out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}

	return nil
}

// --- Auth ---

// RegisterInput holds the fields for account registration.
type RegisterInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// AuthResponse is the backend's response to register and authenticate calls.
type AuthResponse struct {
	Token string `json:"token"`
}

// Register creates a new account and returns its token.
func (c *Client) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", input, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Authenticate exchanges email and password for a token.
func (c *Client) Authenticate(ctx context.Context, email, password string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/authenticate", "", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Catalog ---

// Products returns the full product list.
func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.do(ctx, http.MethodGet, "/products", "", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Product returns one product by ID.
func (c *Client) Product(ctx context.Context, id int64) (*domain.Product, error) {
	var product domain.Product
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), "", nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// ProductsByCategory returns the products in one category.
func (c *Client) ProductsByCategory(ctx context.Context, categoryID int64) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/products/category/%d", categoryID), "", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Categories returns all product categories.
func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	if err := c.do(ctx, http.MethodGet, "/categories", "", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// --- Orders ---

// OrderLine is one line of an order-creation request.
type OrderLine struct {
	Product  OrderLineProduct `json:"product"`
	Quantity int              `json:"quantity"`
	Price    int64            `json:"price"`
}

// OrderLineProduct references the ordered product by ID only.
type OrderLineProduct struct {
	ID int64 `json:"id"`
}

// CreateOrderInput is the order-creation request: cart lines, the cart total,
// and the delivery fields flattened alongside them, matching the backend's
// order contract.
type CreateOrderInput struct {
	Items []OrderLine `json:"items"`
	Total int64       `json:"total"`
	domain.DeliveryInfo
}

// CreateOrder places an order on behalf of the authenticated user.
func (c *Client) CreateOrder(ctx context.Context, token string, input CreateOrderInput) (*domain.Order, error) {
	var order domain.Order
	if err := c.do(ctx, http.MethodPost, "/orders", token, input, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Orders returns the authenticated user's orders.
func (c *Client) Orders(ctx context.Context, token string) ([]domain.Order, error) {
	var orders []domain.Order
	if err := c.do(ctx, http.MethodGet, "/orders", token, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// OrderByCode returns one order by its public order code.
func (c *Client) OrderByCode(ctx context.Context, token, code string) (*domain.Order, error) {
	var order domain.Order
	if err := c.do(ctx, http.MethodGet, "/orders/code/"+code, token, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// --- Payments ---

// CreatePaymentIntentInput is the payment-intent creation request.
type CreatePaymentIntentInput struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	OrderID  int64  `json:"orderId"`
}

// CreatePaymentIntent asks the backend to open a payment intent with the
// processor for the given order.
func (c *Client) CreatePaymentIntent(ctx context.Context, token string, input CreatePaymentIntentInput) (*domain.PaymentIntent, error) {
	var intent domain.PaymentIntent
	if err := c.do(ctx, http.MethodPost, "/payments/intent", token, input, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

// ConfirmPayment notifies the backend that the processor reported the intent
// as paid. The backend replies 204 on success.
func (c *Client) ConfirmPayment(ctx context.Context, token, paymentIntentID string) error {
	body := map[string]string{"paymentIntentId": paymentIntentID}
	return c.do(ctx, http.MethodPost, "/payments/confirm", token, body, nil)
}
