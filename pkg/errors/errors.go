package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors for common cases.
var (
	ErrNotFound         = errors.New("resource not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInternal         = errors.New("internal error")
	ErrServiceUnavail   = errors.New("service unavailable")
	ErrProviderFailure  = errors.New("payment provider request failed")
	ErrSignatureInvalid = errors.New("webhook signature invalid")
	ErrUnsupportedEvent = errors.New("event type not supported")
	ErrStoreDisabled    = errors.New("store is disabled")
)

// AppError represents a structured application error with HTTP status mapping.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound creates a 404 error.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// ServiceUnavailable creates a 503 error.
func ServiceUnavailable(message string) *AppError {
	return &AppError{
		Code:    "SERVICE_UNAVAILABLE",
		Message: message,
		Status:  http.StatusServiceUnavailable,
		Err:     ErrServiceUnavail,
	}
}

// ProviderFailure creates a 502 error with a generic client-facing message.
// The underlying provider error is preserved for server-side logging only;
// it must never reach the response body.
func ProviderFailure(err error) *AppError {
	return &AppError{
		Code:    "PROVIDER_ERROR",
		Message: "unable to complete the request, please try again later",
		Status:  http.StatusBadGateway,
		Err:     fmt.Errorf("%w: %w", ErrProviderFailure, err),
	}
}

// SignatureInvalid creates a 400 error for a failed webhook signature check.
func SignatureInvalid(err error) *AppError {
	return &AppError{
		Code:    "INVALID_SIGNATURE",
		Message: "invalid signature",
		Status:  http.StatusBadRequest,
		Err:     fmt.Errorf("%w: %w", ErrSignatureInvalid, err),
	}
}

// UnsupportedEvent creates a 400 error for a webhook event type outside the allowlist.
func UnsupportedEvent(eventType string) *AppError {
	return &AppError{
		Code:    "UNSUPPORTED_EVENT",
		Message: "event type not supported",
		Status:  http.StatusBadRequest,
		Err:     fmt.Errorf("%w: %s", ErrUnsupportedEvent, eventType),
	}
}

// StoreDisabled creates a 403 error carrying the operator's custom message.
func StoreDisabled(message string) *AppError {
	if message == "" {
		message = "The store is currently closed."
	}
	return &AppError{
		Code:    "STORE_DISABLED",
		Message: message,
		Status:  http.StatusForbidden,
		Err:     ErrStoreDisabled,
	}
}

// QuantityExceeded creates a 400 error naming the offending item and its limit.
func QuantityExceeded(productID string, limit int) *AppError {
	return &AppError{
		Code:    "QUANTITY_EXCEEDED",
		Message: fmt.Sprintf("quantity for product %s exceeds the limit of %d per item", productID, limit),
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrSignatureInvalid), errors.Is(err, ErrUnsupportedEvent):
		return http.StatusBadRequest
	case errors.Is(err, ErrStoreDisabled):
		return http.StatusForbidden
	case errors.Is(err, ErrProviderFailure):
		return http.StatusBadGateway
	case errors.Is(err, ErrServiceUnavail):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
