package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/a-bjn/sudexpert-storefront/internal/storefront/service"
	"github.com/a-bjn/sudexpert-storefront/pkg/httputil"
	"github.com/a-bjn/sudexpert-storefront/pkg/validator"
)

// CheckoutHandler handles HTTP requests for the checkout flow and order history.
type CheckoutHandler struct {
	checkout *service.CheckoutService
	orders   *service.OrderService
	logger   *slog.Logger
}

// NewCheckoutHandler creates a new checkout HTTP handler.
func NewCheckoutHandler(checkout *service.CheckoutService, orders *service.OrderService, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		orders:   orders,
		logger:   logger,
	}
}

// SubmitDeliveryRequest is the JSON request body for the delivery step.
type SubmitDeliveryRequest struct {
	Name       string `json:"deliveryName" validate:"required,max=200"`
	Email      string `json:"deliveryEmail" validate:"required,email"`
	Phone      string `json:"deliveryPhone" validate:"required,max=30"`
	Address    string `json:"deliveryAddress" validate:"required,max=500"`
	City       string `json:"deliveryCity" validate:"required,max=100"`
	County     string `json:"deliveryCounty" validate:"required,max=100"`
	PostalCode string `json:"deliveryPostalCode" validate:"required,max=20"`
	Country    string `json:"deliveryCountry" validate:"required,max=100"`
	Notes      string `json:"deliveryNotes" validate:"max=1000"`
}

// GetState handles GET /api/v1/checkout
func (h *CheckoutHandler) GetState(w http.ResponseWriter, r *http.Request) {
	state, err := h.checkout.State(r.Context(), sessionIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: state})
}

// SubmitDelivery handles POST /api/v1/checkout/delivery
func (h *CheckoutHandler) SubmitDelivery(w http.ResponseWriter, r *http.Request) {
	var req SubmitDeliveryRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	result, err := h.checkout.SubmitDelivery(r.Context(), sessionIDFromContext(r.Context()), service.SubmitDeliveryInput{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
		City:       req.City,
		County:     req.County,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		Notes:      req.Notes,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if result.Redirect != nil {
		httputil.WriteRedirect(w, result.Redirect.Path)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result.State})
}

// CompletePayment handles POST /api/v1/checkout/payment
func (h *CheckoutHandler) CompletePayment(w http.ResponseWriter, r *http.Request) {
	result, err := h.checkout.CompletePayment(r.Context(), sessionIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if result.Redirect != nil {
		httputil.WriteRedirect(w, result.Redirect.Path)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result.State})
}

// ListOrders handles GET /api/v1/orders
func (h *CheckoutHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListOrders(r.Context(), sessionIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: orders})
}

// GetOrderByCode handles GET /api/v1/orders/{orderCode}
func (h *CheckoutHandler) GetOrderByCode(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetOrderByCode(r.Context(), sessionIDFromContext(r.Context()), chi.URLParam(r, "orderCode"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}
