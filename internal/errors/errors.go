package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Every error leaving the service layer wraps exactly one of these.
var (
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("Invalid username or password")
	ErrUnauthorized       = errors.New("Unauthorized")
	ErrStore              = errors.New("store failure")
)

var (
	ErrEmailAlreadyInUse   = fmt.Errorf("%w: Email already registered, use another email.", ErrConflict)
	ErrUsernameTaken       = fmt.Errorf("%w: Username is not available.", ErrConflict)
	ErrPasswordMismatch    = fmt.Errorf("%w: passwords do not match", ErrValidation)
	ErrWeakPassword        = fmt.Errorf("%w: password must be at least 8 characters and contain upper and lower case letters, a digit and one of !@#$%%^&*", ErrValidation)
	ErrInvalidToken        = errors.New("invalid token")
	ErrRefreshTokenRevoked = errors.New("refresh token revoked")
	ErrMissingCredentials  = errors.New("missing credentials")
)

// Store wraps a persistence failure of operation op.
func Store(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStore, err)
}

// Unauthorized wraps a token failure so callers only see the Unauthorized kind.
func Unauthorized(err error) error {
	return fmt.Errorf("%w: %w", ErrUnauthorized, err)
}

// HTTPStatus maps an error kind to the status code returned to clients.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message safe to show to a client.
func PublicMessage(err error) string {
	switch {
	case errors.Is(err, ErrEmailAlreadyInUse):
		return "Email already registered, use another email."
	case errors.Is(err, ErrUsernameTaken):
		return "Username is not available."
	case errors.Is(err, ErrPasswordMismatch):
		return "passwords do not match"
	case errors.Is(err, ErrWeakPassword):
		return "password must be at least 8 characters and contain upper and lower case letters, a digit and one of !@#$%^&*"
	case errors.Is(err, ErrValidation):
		return err.Error()
	case errors.Is(err, ErrInvalidCredentials):
		return ErrInvalidCredentials.Error()
	case errors.Is(err, ErrUnauthorized):
		return ErrUnauthorized.Error()
	default:
		return "internal server error"
	}
}
