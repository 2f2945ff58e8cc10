package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-bjn/sudexpert-storefront/internal/notifier/service"
	apperrors "github.com/a-bjn/sudexpert-storefront/pkg/errors"
	"github.com/a-bjn/sudexpert-storefront/pkg/httputil"
	"github.com/a-bjn/sudexpert-storefront/pkg/middleware"
	"github.com/a-bjn/sudexpert-storefront/pkg/validator"
)

// NotifierHandler handles HTTP requests for the contact form.
type NotifierHandler struct {
	service *service.NotifierService
	logger  *slog.Logger
}

// NewNotifierHandler creates a new notifier HTTP handler.
func NewNotifierHandler(svc *service.NotifierService, logger *slog.Logger) *NotifierHandler {
	return &NotifierHandler{
		service: svc,
		logger:  logger,
	}
}

// SubmitRequest is the JSON request body for the contact form.
type SubmitRequest struct {
	Token   string `json:"token" validate:"required,max=100"`
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"max=30"`
	Message string `json:"message" validate:"required,max=5000"`
}

// submitResponse is the contact form's flat response contract, kept distinct
// from the storefront envelope for the microsite's sake.
type submitResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Submit handles POST /api/token-form
func (h *NotifierHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, submitResponse{
			Success: false,
			Message: "Please fill in all required fields.",
		})
		return
	}

	err := h.service.Submit(r.Context(), middleware.ClientIP(r), service.SubmitInput{
		Token:   req.Token,
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Message: req.Message,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, submitResponse{
		Success: true,
		Message: "Thank you, we will get back to you shortly.",
	})
}

func (h *NotifierHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		httputil.WriteJSON(w, http.StatusBadRequest, submitResponse{
			Success: false,
			Message: "Please fill in all required fields.",
		})
	case errors.Is(err, apperrors.ErrRateLimited):
		httputil.WriteJSON(w, http.StatusTooManyRequests, submitResponse{
			Success: false,
			Message: "Too many requests, please try again later.",
		})
	default:
		h.logger.ErrorContext(r.Context(), "submission failed",
			slog.String("error", err.Error()),
		)
		httputil.WriteJSON(w, http.StatusInternalServerError, submitResponse{
			Success: false,
			Message: "Something went wrong, please try again later.",
		})
	}
}
