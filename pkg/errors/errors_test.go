package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound, ErrInvalidInput, ErrUnauthorized, ErrForbidden,
		ErrConflict, ErrInternal, ErrRateLimited, ErrServiceUnavail,
		ErrPaymentFailed,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(a, b), "sentinel %v should not match %v", a, b)
		}
	}
}

func TestAppErrorError(t *testing.T) {
	err := &AppError{Code: "NOT_FOUND", Message: "order with id 42 not found"}
	assert.Equal(t, "NOT_FOUND: order with id 42 not found", err.Error())

	withCause := &AppError{Code: "INTERNAL_ERROR", Message: "an internal error occurred", Err: errors.New("dial tcp: refused")}
	assert.Equal(t, "INTERNAL_ERROR: an internal error occurred: dial tcp: refused", withCause.Error())
}

func TestAppErrorUnwrap(t *testing.T) {
	err := NotFound("product", "99")
	assert.True(t, errors.Is(err, ErrNotFound))

	wrapped := fmt.Errorf("loading cart: %w", InvalidInput("quantity must be positive"))
	assert.True(t, errors.Is(wrapped, ErrInvalidInput))

	var appErr *AppError
	require.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, "quantity must be positive", appErr.Message)
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		code     string
		status   int
		sentinel error
	}{
		{"not found", NotFound("order", "7"), "NOT_FOUND", http.StatusNotFound, ErrNotFound},
		{"invalid input", InvalidInput("bad"), "INVALID_INPUT", http.StatusBadRequest, ErrInvalidInput},
		{"unauthorized", Unauthorized("login required"), "UNAUTHORIZED", http.StatusUnauthorized, ErrUnauthorized},
		{"forbidden", Forbidden("no access"), "FORBIDDEN", http.StatusForbidden, ErrForbidden},
		{"conflict", Conflict("taken"), "CONFLICT", http.StatusConflict, ErrConflict},
		{"rate limited", RateLimited("slow down"), "RATE_LIMITED", http.StatusTooManyRequests, ErrRateLimited},
		{"payment failed", PaymentFailed("card declined"), "PAYMENT_FAILED", http.StatusUnprocessableEntity, ErrPaymentFailed},
		{"service unavailable", ServiceUnavailable("down"), "SERVICE_UNAVAILABLE", http.StatusServiceUnavailable, ErrServiceUnavail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.Status)
			assert.True(t, errors.Is(tt.err, tt.sentinel))
		})
	}
}

func TestInternalWrapsCause(t *testing.T) {
	cause := errors.New("pool exhausted")
	err := Internal(cause)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.True(t, errors.Is(err, cause))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(ErrNotFound))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(fmt.Errorf("wrap: %w", ErrInvalidInput)))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(Unauthorized("nope")))
	assert.Equal(t, http.StatusTooManyRequests, HTTPStatus(ErrRateLimited))
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(ErrPaymentFailed))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("anything else")))

	// AppError status wins over sentinel mapping.
	custom := &AppError{Code: "UPSTREAM_ERROR", Message: "bad gateway", Status: http.StatusBadGateway, Err: ErrInternal}
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(custom))
}
