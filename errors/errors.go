package errors

import (
	"context"
	stdErrors "errors"
	"fmt"
	"net/http"
	"time"
)

// AppError is the application-wide error type. Retryable marks failures that
// the retry layer may attempt again.
type AppError struct {
	Raw       error
	HTTPCode  int
	Code      ErrorCode
	Kind      Kind
	Message   string
	Details   map[string]string
	Retryable bool
	Timestamp time.Time
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the underlying cause
func (e AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	details := make(map[string]string, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	e.Details = details
	return e
}

func newAppError(raw error, status int, code ErrorCode, kind Kind, msg string, retryable bool) AppError {
	return AppError{
		Raw:       raw,
		HTTPCode:  status,
		Code:      code,
		Kind:      kind,
		Message:   msg,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// General Errors
func ErrInternal(err error) AppError {
	return newAppError(err, http.StatusInternalServerError, ErrorCode_INTERNAL, KindInternal, "Internal server error", false)
}

func ErrInvalidArgument(message string) AppError {
	return newAppError(nil, http.StatusBadRequest, ErrorCode_INVALID_ARGUMENT, KindValidation, message, false)
}

func ErrInvalidPayload(err error) AppError {
	return newAppError(err, http.StatusBadRequest, ErrorCode_INVALID_PAYLOAD, KindValidation, "Invalid request payload", false)
}

// ErrValidation reports field-level validation failures. fields maps a JSON
// field path to the violated rule.
func ErrValidation(fields map[string]string) AppError {
	e := newAppError(nil, http.StatusBadRequest, ErrorCode_VALIDATION, KindValidation, "Invalid request payload", false)
	for k, v := range fields {
		e = e.WithDetail(k, v)
	}
	return e
}

// Authentication Errors
func ErrUnauthenticated() AppError {
	return newAppError(nil, http.StatusUnauthorized, ErrorCode_UNAUTHENTICATED, KindAuthentication, "Authentication required", false)
}

func ErrInvalidToken(err error) AppError {
	return newAppError(err, http.StatusUnauthorized, ErrorCode_AUTH_INVALID_TOKEN, KindAuthentication, "Invalid authentication token", false)
}

func ErrTokenExpired() AppError {
	return newAppError(nil, http.StatusUnauthorized, ErrorCode_AUTH_TOKEN_EXPIRED, KindAuthentication, "Authentication token has expired", false)
}

func ErrForbidden(message string) AppError {
	return newAppError(nil, http.StatusForbidden, ErrorCode_FORBIDDEN, KindAuthentication, message, false)
}

// Dependency Errors

// ErrDependencyTransient covers network failures, 429 and 5xx responses
func ErrDependencyTransient(service string, err error) AppError {
	return newAppError(err, http.StatusBadGateway, ErrorCode_DEPENDENCY_UNAVAILABLE, KindDependencyTransient,
		fmt.Sprintf("%s temporarily unavailable", service), true).WithDetail("service", service)
}

// ErrDependencyTimeout is raised when a protected call loses its timeout race
func ErrDependencyTimeout(service string, timeout time.Duration) AppError {
	return newAppError(context.DeadlineExceeded, http.StatusGatewayTimeout, ErrorCode_DEPENDENCY_TIMEOUT, KindDependencyTransient,
		fmt.Sprintf("%s call timed out after %s", service, timeout), true).WithDetail("service", service)
}

// ErrDependencyTerminal covers permanent 4xx responses
func ErrDependencyTerminal(service string, err error) AppError {
	return newAppError(err, http.StatusBadGateway, ErrorCode_DEPENDENCY_REJECTED, KindDependencyTerminal,
		fmt.Sprintf("%s rejected the request", service), false).WithDetail("service", service)
}

func ErrPreconditionFailed(message string) AppError {
	return newAppError(nil, http.StatusPreconditionFailed, ErrorCode_PRECONDITION_FAILED, KindDependencyTerminal, message, false)
}

func ErrCircuitOpen(name string, retryAt time.Time) AppError {
	return newAppError(nil, http.StatusServiceUnavailable, ErrorCode_CIRCUIT_OPEN, KindCircuitOpen,
		fmt.Sprintf("circuit %s is open", name), false).
		WithDetail("breaker", name).
		WithDetail("retry_at", retryAt.UTC().Format(time.RFC3339))
}

// Extraction Errors

// ErrInvalidModelOutput marks unusable model content. It is retryable so the
// next attempt reruns the extraction from scratch.
func ErrInvalidModelOutput(err error) AppError {
	return newAppError(err, http.StatusBadGateway, ErrorCode_EXTRACTION_INVALID_OUTPUT, KindDependencyTransient,
		"model returned unusable output", true)
}

func ErrExtractionFailed(err error) AppError {
	return newAppError(err, http.StatusBadGateway, ErrorCode_EXTRACTION_FAILED, KindDependencyTerminal, "extraction failed", false)
}

// Integration Errors
func ErrStorageFailed(operation string, err error) AppError {
	return newAppError(err, http.StatusInternalServerError, ErrorCode_INTEGRATION_STORAGE_FAILED, KindInternal,
		fmt.Sprintf("Storage operation failed: %s", operation), false)
}

func ErrCacheFailed(operation string, err error) AppError {
	return newAppError(err, http.StatusInternalServerError, ErrorCode_INTEGRATION_CACHE_FAILED, KindInternal,
		fmt.Sprintf("Cache operation failed: %s", operation), false)
}

func ErrMessagingFailed(subject string, err error) AppError {
	return newAppError(err, http.StatusInternalServerError, ErrorCode_INTEGRATION_MESSAGING_FAILED, KindInternal,
		"Publish failed", false).WithDetail("subject", subject)
}

// IsRetryable reports whether err may succeed on another attempt. Errors
// without an AppError in their chain are treated as transient, except for
// context cancellation and deadline expiry of the caller.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var appErr AppError
	if stdErrors.As(err, &appErr) {
		return appErr.Retryable
	}
	if stdErrors.Is(err, context.Canceled) || stdErrors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

// KindOf classifies err, defaulting to KindInternal
func KindOf(err error) Kind {
	var appErr AppError
	if stdErrors.As(err, &appErr) && appErr.Kind != "" {
		return appErr.Kind
	}
	return KindInternal
}

// HasCode reports whether err carries an AppError with the given code
func HasCode(err error, code ErrorCode) bool {
	var appErr AppError
	return stdErrors.As(err, &appErr) && appErr.Code == code
}
