package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/a-bjn/sudexpert-storefront/pkg/errors"
)

// backendErrorBody is the error shape returned by the commerce backend: a
// plain JSON object with a message field.
type backendErrorBody struct {
	Message string `json:"message"`
}

// ParseResponseError reads the body of a non-2xx response from the commerce
// backend and translates it into an AppError. When the body carries a
// `{"message": ...}` object, that message is surfaced verbatim; otherwise the
// error reads "request failed with status <code>".
//
// The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB limit
	if err != nil {
		return mapStatus(resp.StatusCode, fmt.Sprintf("request failed with status %d", resp.StatusCode))
	}

	var body backendErrorBody
	if json.Unmarshal(bodyBytes, &body) == nil && strings.TrimSpace(body.Message) != "" {
		return mapStatus(resp.StatusCode, body.Message)
	}

	return mapStatus(resp.StatusCode, fmt.Sprintf("request failed with status %d", resp.StatusCode))
}

// mapStatus wraps the message in an AppError matching the backend's status so
// callers can branch on error class (errors.Is against the sentinels) while
// still surfacing the backend's message untouched.
func mapStatus(status int, message string) error {
	switch status {
	case http.StatusBadRequest:
		return &apperrors.AppError{Code: "INVALID_INPUT", Message: message, Status: status, Err: apperrors.ErrInvalidInput}
	case http.StatusUnauthorized:
		return &apperrors.AppError{Code: "UNAUTHORIZED", Message: message, Status: status, Err: apperrors.ErrUnauthorized}
	case http.StatusForbidden:
		return &apperrors.AppError{Code: "FORBIDDEN", Message: message, Status: status, Err: apperrors.ErrForbidden}
	case http.StatusNotFound:
		return &apperrors.AppError{Code: "NOT_FOUND", Message: message, Status: status, Err: apperrors.ErrNotFound}
	case http.StatusConflict:
		return &apperrors.AppError{Code: "CONFLICT", Message: message, Status: status, Err: apperrors.ErrConflict}
	case http.StatusUnprocessableEntity:
		return &apperrors.AppError{Code: "PAYMENT_FAILED", Message: message, Status: status, Err: apperrors.ErrPaymentFailed}
	case http.StatusServiceUnavailable:
		return &apperrors.AppError{Code: "SERVICE_UNAVAILABLE", Message: message, Status: status, Err: apperrors.ErrServiceUnavail}
	default:
		return &apperrors.AppError{Code: "UPSTREAM_ERROR", Message: message, Status: status, Err: apperrors.ErrInternal}
	}
}

// IsAuthFailure reports whether the error is an authorization failure from
// the backend. The checkout flow clears stored credentials on these: either
// the structured 401/403 class or, as a fallback, a message mentioning
// "Forbidden" or "403" (some backend deployments return those in free text).
func IsAuthFailure(err error) bool {
	if err == nil {
		return false
	}
	status := apperrors.HTTPStatus(err)
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Forbidden") || strings.Contains(msg, "403")
}
