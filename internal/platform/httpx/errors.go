package httpx

import (
	"errors"
	"net/http"

	"github.com/odyssey-erp/recon-portal/internal/shared"
)

// RespondError maps domain errors to JSON API responses. Internal details
// never reach the client.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrValidation):
		Error(w, http.StatusBadRequest, validationMessage(err))
	case errors.Is(err, shared.ErrInvalidCredentials):
		Error(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, shared.ErrSessionInvalid):
		Error(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, shared.ErrNotFound), errors.Is(err, shared.ErrPathRejected):
		Error(w, http.StatusNotFound, "Not found")
	default:
		Error(w, http.StatusInternalServerError, "Internal error.")
	}
}

// ValidationError carries a client-safe message for a rejected request.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Unwrap lets errors.Is match shared.ErrValidation.
func (e *ValidationError) Unwrap() error { return shared.ErrValidation }

// NewValidationError builds a ValidationError with the given message.
func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}

func validationMessage(err error) string {
	var vErr *ValidationError
	if errors.As(err, &vErr) && vErr.Message != "" {
		return vErr.Message
	}
	return "Invalid request"
}
