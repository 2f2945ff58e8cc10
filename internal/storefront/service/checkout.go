package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/a-bjn/sudexpert-storefront/internal/storefront/backend"
	"github.com/a-bjn/sudexpert-storefront/internal/storefront/domain"
	"github.com/a-bjn/sudexpert-storefront/internal/storefront/event"
	"github.com/a-bjn/sudexpert-storefront/internal/storefront/payment"
	"github.com/a-bjn/sudexpert-storefront/internal/storefront/repository"
	apperrors "github.com/a-bjn/sudexpert-storefront/pkg/errors"
	"github.com/a-bjn/sudexpert-storefront/pkg/httpclient"
)

// Storefront paths the checkout flow redirects to.
const (
	PathLogin           = "/login"
	PathCart            = "/cart"
	PathCheckoutSuccess = "/checkout/success"
)

// Currency is the only currency the storefront sells in.
const Currency = "ron"

// confirmTimeout bounds the fire-and-forget backend confirmation call.
const confirmTimeout = 15 * time.Second

// SubmitDeliveryInput holds the delivery form fields.
type SubmitDeliveryInput struct {
	Name       string `json:"deliveryName" validate:"required"`
	Email      string `json:"deliveryEmail" validate:"required,email"`
	Phone      string `json:"deliveryPhone" validate:"required"`
	Address    string `json:"deliveryAddress" validate:"required"`
	City       string `json:"deliveryCity" validate:"required"`
	County     string `json:"deliveryCounty" validate:"required"`
	PostalCode string `json:"deliveryPostalCode" validate:"required"`
	Country    string `json:"deliveryCountry" validate:"required"`
	Notes      string `json:"deliveryNotes"`
}

// CheckoutResult is the outcome of a checkout step. Exactly one of State and
// Redirect is set: State when the flow stays in checkout, Redirect when the
// session must navigate elsewhere (login on credential failure, the success
// page once payment lands).
type CheckoutResult struct {
	State    *domain.CheckoutState `json:"state,omitempty"`
	Redirect *domain.Redirect      `json:"redirect,omitempty"`
}

// CheckoutService orchestrates the two-step checkout flow: the delivery step
// creates the backend order and opens a payment intent, the payment step
// confirms the intent with the processor and settles the session.
type CheckoutService struct {
	store    repository.KeyValueStore
	cart     *CartService
	auth     *AuthService
	backend  *backend.Client
	provider payment.Provider
	producer *event.Producer
	logger   *slog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	store repository.KeyValueStore,
	cart *CartService,
	auth *AuthService,
	backend *backend.Client,
	provider payment.Provider,
	producer *event.Producer,
	logger *slog.Logger,
) *CheckoutService {
	return &CheckoutService{
		store:    store,
		cart:     cart,
		auth:     auth,
		backend:  backend,
		provider: provider,
		producer: producer,
		logger:   logger,
	}
}

// State returns the session's current checkout progress. A session that has
// not submitted delivery yet is on the delivery step.
func (s *CheckoutService) State(ctx context.Context, sessionID string) (*domain.CheckoutState, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	raw, err := s.store.Read(ctx, repository.KeyPrefixCheckout+sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &domain.CheckoutState{Step: domain.StepDelivery}, nil
		}
		return nil, fmt.Errorf("read checkout state: %w", err)
	}

	var state domain.CheckoutState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("decode checkout state: %w", err)
	}

	return &state, nil
}

// SubmitDelivery completes the delivery step: it places the order with the
// backend, opens a payment intent for the cart total, and advances the
// session to the payment step. A credential failure from the backend clears
// the stored credentials and redirects the session to login.
func (s *CheckoutService) SubmitDelivery(ctx context.Context, sessionID string, input SubmitDeliveryInput) (*CheckoutResult, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	token, err := s.auth.Token(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return &CheckoutResult{Redirect: &domain.Redirect{Path: PathLogin}}, nil
	}

	cart, err := s.cart.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return &CheckoutResult{Redirect: &domain.Redirect{Path: PathCart}}, nil
	}

	lines := make([]backend.OrderLine, 0, len(cart.Items))
	for _, item := range cart.Items {
		lines = append(lines, backend.OrderLine{
			Product:  backend.OrderLineProduct{ID: item.ID},
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}

	order, err := s.backend.CreateOrder(ctx, token, backend.CreateOrderInput{
		Items: lines,
		Total: cart.TotalPrice(),
		DeliveryInfo: domain.DeliveryInfo{
			Name:       input.Name,
			Email:      input.Email,
			Phone:      input.Phone,
			Address:    input.Address,
			City:       input.City,
			County:     input.County,
			PostalCode: input.PostalCode,
			Country:    input.Country,
			Notes:      input.Notes,
		},
	})
	if err != nil {
		return s.handleBackendError(ctx, sessionID, "create order", err)
	}

	intent, err := s.backend.CreatePaymentIntent(ctx, token, backend.CreatePaymentIntentInput{
		Amount:   order.Total,
		Currency: Currency,
		OrderID:  order.ID,
	})
	if err != nil {
		return s.handleBackendError(ctx, sessionID, "create payment intent", err)
	}

	state := &domain.CheckoutState{
		Step:         domain.StepPayment,
		OrderID:      order.ID,
		OrderCode:    order.OrderCode,
		Total:        order.Total,
		ClientSecret: intent.ClientSecret,
	}
	if err := s.saveState(ctx, sessionID, state); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "delivery step completed",
		slog.String("session_id", sessionID),
		slog.String("order_code", order.OrderCode),
		slog.Int64("total", order.Total),
	)

	return &CheckoutResult{State: state}, nil
}

// CompletePayment completes the payment step: it confirms the intent with the
// payment processor and, once the processor reports success, notifies the
// backend in the background, clears the cart, and redirects the session to
// the order confirmation page. The backend notification never blocks the
// redirect; the backend reconciles via processor webhooks regardless.
func (s *CheckoutService) CompletePayment(ctx context.Context, sessionID string) (*CheckoutResult, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	token, err := s.auth.Token(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return &CheckoutResult{Redirect: &domain.Redirect{Path: PathLogin}}, nil
	}

	state, err := s.State(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state.Step != domain.StepPayment || state.ClientSecret == "" {
		return nil, apperrors.InvalidInput("no payment in progress")
	}

	result, err := s.provider.Confirm(ctx, payment.ConfirmInput{
		ClientSecret: state.ClientSecret,
		ReturnURL:    successPath(state.OrderCode),
	})
	if err != nil {
		return nil, fmt.Errorf("confirm payment: %w", err)
	}
	if result.ErrorMessage != "" {
		return nil, apperrors.PaymentFailed(result.ErrorMessage)
	}
	if result.Intent.Status != payment.StatusSucceeded {
		return nil, apperrors.PaymentFailed(fmt.Sprintf("payment is %s, not completed", result.Intent.Status))
	}

	s.confirmBackendAsync(ctx, sessionID, token, result.Intent.ID)

	if err := s.cart.ClearCart(ctx, sessionID); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear cart after payment",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}
	if err := s.store.Remove(ctx, repository.KeyPrefixCheckout+sessionID); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.logger.ErrorContext(ctx, "failed to clear checkout state",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}

	if s.producer != nil {
		if err := s.producer.PublishCheckoutCompleted(ctx, event.CheckoutCompletedData{
			SessionID:       sessionID,
			OrderID:         state.OrderID,
			OrderCode:       state.OrderCode,
			Total:           state.Total,
			PaymentIntentID: result.Intent.ID,
		}); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish checkout.completed event",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "payment completed",
		slog.String("session_id", sessionID),
		slog.String("order_code", state.OrderCode),
		slog.String("payment_intent_id", result.Intent.ID),
	)

	return &CheckoutResult{
		Redirect: &domain.Redirect{Path: successPath(state.OrderCode)},
	}, nil
}

// successPath builds the confirmation page path carrying the order code.
func successPath(orderCode string) string {
	return PathCheckoutSuccess + "?orderCode=" + url.QueryEscape(orderCode)
}

// confirmBackendAsync tells the backend the intent is paid without holding up
// the caller. The request survives the parent request's cancellation.
func (s *CheckoutService) confirmBackendAsync(ctx context.Context, sessionID, token, paymentIntentID string) {
	bgCtx := context.WithoutCancel(ctx)
	go func() {
		callCtx, cancel := context.WithTimeout(bgCtx, confirmTimeout)
		defer cancel()

		if err := s.backend.ConfirmPayment(callCtx, token, paymentIntentID); err != nil {
			s.logger.ErrorContext(callCtx, "backend payment confirmation failed",
				slog.String("session_id", sessionID),
				slog.String("payment_intent_id", paymentIntentID),
				slog.String("error", err.Error()),
			)
			return
		}

		s.logger.InfoContext(callCtx, "backend payment confirmed",
			slog.String("session_id", sessionID),
			slog.String("payment_intent_id", paymentIntentID),
		)
	}()
}

// handleBackendError turns a credential failure into a login redirect and
// passes every other backend error through.
func (s *CheckoutService) handleBackendError(ctx context.Context, sessionID, op string, err error) (*CheckoutResult, error) {
	if httpclient.IsAuthFailure(err) {
		s.logger.WarnContext(ctx, "backend rejected credentials during checkout",
			slog.String("session_id", sessionID),
			slog.String("operation", op),
		)
		if clearErr := s.auth.ClearCredentials(ctx, sessionID); clearErr != nil {
			s.logger.ErrorContext(ctx, "failed to clear rejected credentials",
				slog.String("session_id", sessionID),
				slog.String("error", clearErr.Error()),
			)
		}
		return &CheckoutResult{Redirect: &domain.Redirect{Path: PathLogin}}, nil
	}
	return nil, fmt.Errorf("%s: %w", op, err)
}

func (s *CheckoutService) saveState(ctx context.Context, sessionID string, state *domain.CheckoutState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal checkout state: %w", err)
	}
	if err := s.store.Write(ctx, repository.KeyPrefixCheckout+sessionID, string(raw)); err != nil {
		return fmt.Errorf("write checkout state: %w", err)
	}
	return nil
}
