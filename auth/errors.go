package auth

import (
	"errors"
	"fmt"
)

// Common authentication errors.
var (
	// ErrNoToken indicates the Authorization header was absent entirely.
	ErrNoToken = errors.New("no token available")

	// ErrInvalidTokenFormat indicates the Authorization header was present
	// but malformed: wrong scheme, wrong casing, or an empty token.
	ErrInvalidTokenFormat = errors.New("invalid token format")

	// ErrTokenInvalid indicates the token failed structural or claim decoding.
	ErrTokenInvalid = errors.New("token is invalid")

	// ErrTokenExpired indicates the exp claim is in the past.
	ErrTokenExpired = errors.New("token expired")
)

// ValidationError indicates a semantic rejection of an otherwise well-formed
// token, such as an audience mismatch. The reason is for server-side logs
// only and must never be echoed to the caller beyond a generic 401.
type ValidationError struct {
	Reason string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("token validation failed: %s", e.Reason)
}

// NewValidationError creates a ValidationError with the given reason
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
