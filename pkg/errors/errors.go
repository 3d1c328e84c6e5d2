// Package errors provides structured error handling for the application
// with an explicit code taxonomy mapped onto HTTP statuses.
package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode classifies an application error.
type ErrorCode string

const (
	// Client errors (4xx)
	CodeBadRequest       ErrorCode = "BAD_REQUEST"
	CodeForbidden        ErrorCode = "FORBIDDEN"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	// Server errors (5xx)
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// Orchestration taxonomy.
	// CodeConfig: no resolvable model, API key, or store row. Fatal; the
	// user is told to contact an administrator.
	CodeConfig ErrorCode = "CONFIG_ERROR"
	// CodeProvider: upstream non-success after the single fallback retry.
	CodeProvider ErrorCode = "PROVIDER_ERROR"
	// CodePersistence: a history write failed. Logged, never surfaced.
	CodePersistence ErrorCode = "PERSISTENCE_ERROR"
)

// AppError is an application error with a code, a user-facing message, and an
// optional wrapped cause.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// StatusCode maps the error code onto an HTTP status. Config, provider, and
// persistence failures all surface as plain server errors; the code in the
// log line carries the distinction, not the wire status.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case CodeBadRequest, CodeValidationFailed:
		return http.StatusBadRequest
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// WithCause attaches the underlying cause.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// New creates an application error.
func New(code ErrorCode, message, details string) *AppError {
	return &AppError{Code: code, Message: message, Details: details}
}

// NewBadRequest creates a bad request error.
func NewBadRequest(message string) *AppError {
	return New(CodeBadRequest, message, "")
}

// NewForbidden creates a forbidden error.
func NewForbidden(message string) *AppError {
	if message == "" {
		message = "Access forbidden"
	}
	return New(CodeForbidden, message, "")
}

// NewNotFound creates a not found error.
func NewNotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource), "")
}

// NewInternal creates an internal server error.
func NewInternal(message string) *AppError {
	if message == "" {
		message = "An unexpected error occurred"
	}
	return New(CodeInternal, message, "")
}

// NewConfig creates a terminal configuration error. These indicate missing
// model configs or API keys and ask the user to contact an administrator.
func NewConfig(details string) *AppError {
	return New(CodeConfig,
		"Service is not configured; please contact an administrator", details)
}

// NewProvider creates a provider failure error, raised only after the primary
// and the default-model fallback have both failed.
func NewProvider(details string, cause error) *AppError {
	return New(CodeProvider, "Recommendation service is unavailable", details).WithCause(cause)
}

// NewPersistence creates a store write error. Callers log these and continue;
// they must never fail a request that already produced a user-facing result.
func NewPersistence(operation string, cause error) *AppError {
	return New(CodePersistence, "History save failed",
		fmt.Sprintf("failed to %s", operation)).WithCause(cause)
}

// Wrap converts any error into an AppError, preserving one that already is.
func Wrap(err error, message string) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return NewInternal(message).WithCause(err)
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts the code, defaulting to internal.
func GetCode(err error) ErrorCode {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return CodeInternal
}
