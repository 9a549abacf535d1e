package errors

import (
	stderrors "errors"
	"net/http"
)

// Authentication-specific error types
const (
	ErrorTypeUnauthenticated    ErrorType = "unauthenticated"
	ErrorTypeInvalidCredentials ErrorType = "invalid_credentials"
	ErrorTypeSessionExpired     ErrorType = "session_expired"
)

// AuthError represents a session problem. It is always recovered locally by
// asking the user to log in again and is never retried automatically.
type AuthError struct {
	*AppError
	// ShouldLog is false for the expected "no session yet" case
	ShouldLog bool
}

// Error implements the error interface
func (e *AuthError) Error() string {
	return e.AppError.Error()
}

// Unwrap allows errors.Is and errors.As to work correctly
func (e *AuthError) Unwrap() error {
	return e.AppError
}

// NewUnauthenticatedError is raised before any network call when no usable
// session token exists.
func NewUnauthenticatedError(details ...string) *AuthError {
	detail := ""
	if len(details) > 0 {
		detail = details[0]
	}
	return &AuthError{
		AppError: &AppError{
			Type:    ErrorTypeUnauthenticated,
			Message: "Not authenticated",
			Code:    http.StatusUnauthorized,
			Details: detail,
		},
		ShouldLog: false,
	}
}

// NewInvalidCredentialsError creates an error for a rejected password login.
// It does not say which of email or password was wrong.
func NewInvalidCredentialsError() *AuthError {
	return &AuthError{
		AppError: &AppError{
			Type:    ErrorTypeInvalidCredentials,
			Message: "Invalid email or password",
			Code:    http.StatusUnauthorized,
		},
		ShouldLog: false,
	}
}

// NewSessionExpiredError creates an error for a session whose refresh failed
func NewSessionExpiredError(details ...string) *AuthError {
	detail := "Your session has expired, please log in again"
	if len(details) > 0 {
		detail = details[0]
	}
	return &AuthError{
		AppError: &AppError{
			Type:    ErrorTypeSessionExpired,
			Message: "Session expired",
			Code:    http.StatusUnauthorized,
			Details: detail,
		},
		ShouldLog: true,
	}
}

// IsAuthError checks if the error is an AuthError
func IsAuthError(err error) bool {
	var authErr *AuthError
	return stderrors.As(err, &authErr)
}

// IsUnauthenticated reports any condition that should send the user back to login.
func IsUnauthenticated(err error) bool {
	appErr := GetAppError(err)
	if appErr == nil {
		return false
	}
	switch appErr.Type {
	case ErrorTypeUnauthenticated, ErrorTypeSessionExpired, ErrorTypeInvalidCredentials:
		return true
	}
	return false
}
