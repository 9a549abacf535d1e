// Package errors provides application-level error types and utilities.
// Every failure surfaced to the user is an AppError whose Type tells the
// presentation layer how to phrase it and whether a new attempt makes sense.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrorTypeValidation           ErrorType = "validation_error"
	ErrorTypeNotFound             ErrorType = "not_found"
	ErrorTypeConflict             ErrorType = "conflict"
	ErrorTypeInternal             ErrorType = "internal_error"
	ErrorTypeUpstream             ErrorType = "upstream_error"
	ErrorTypeRateLimited          ErrorType = "rate_limited"
	ErrorTypeGatewayFailed        ErrorType = "gateway_failed"
	ErrorTypeVerificationRejected ErrorType = "verification_rejected"
)

// AppError represents an application error with additional context
type AppError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Code    int       `json:"code"`
	Details string    `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.cause
}

// WithCause attaches the underlying error for errors.Is / errors.As chains.
func (e *AppError) WithCause(err error) *AppError {
	e.cause = err
	return e
}

func newAppError(t ErrorType, code int, message string, details []string) *AppError {
	detail := ""
	if len(details) > 0 {
		detail = details[0]
	}
	return &AppError{
		Type:    t,
		Message: message,
		Code:    code,
		Details: detail,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeValidation, http.StatusBadRequest, message, details)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeNotFound, http.StatusNotFound, message, details)
}

// NewConflictError creates a new conflict error
func NewConflictError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeConflict, http.StatusConflict, message, details)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeInternal, http.StatusInternalServerError, message, details)
}

// NewUpstreamError reports a non-success answer (or no answer) from the backend.
// status is the backend HTTP status, or 0 when the request never completed.
func NewUpstreamError(status int, message string, details ...string) *AppError {
	code := http.StatusBadGateway
	if status >= 400 && status < 500 {
		code = status
	}
	return newAppError(ErrorTypeUpstream, code, message, details)
}

// NewRateLimitedError creates an error for a backend 429
func NewRateLimitedError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeRateLimited, http.StatusTooManyRequests, message, details)
}

// NewGatewayFailedError reports a payment.failed event from the checkout widget
func NewGatewayFailedError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeGatewayFailed, http.StatusPaymentRequired, message, details)
}

// NewVerificationRejectedError reports that the backend refused the gateway tokens
func NewVerificationRejectedError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeVerificationRejected, http.StatusBadRequest, message, details)
}

// IsAppError checks if the error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from error
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// HasType reports whether err carries an AppError of type t.
func HasType(err error, t ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == t
}

// IsConflictError checks if the error is a conflict error
func IsConflictError(err error) bool {
	return HasType(err, ErrorTypeConflict)
}

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return HasType(err, ErrorTypeNotFound)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return HasType(err, ErrorTypeValidation)
}

func IsUpstreamError(err error) bool {
	return HasType(err, ErrorTypeUpstream)
}

func IsRateLimitedError(err error) bool {
	return HasType(err, ErrorTypeRateLimited)
}

func IsGatewayFailedError(err error) bool {
	return HasType(err, ErrorTypeGatewayFailed)
}

func IsVerificationRejectedError(err error) bool {
	return HasType(err, ErrorTypeVerificationRejected)
}
