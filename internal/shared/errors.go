package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a uniqueness constraint violation.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrValidation indicates a malformed or incomplete request.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrSessionInvalid indicates an absent, expired or revoked session.
	ErrSessionInvalid = errors.New("session invalid")
	// ErrPathRejected indicates a report name that may escape the report directory.
	ErrPathRejected = errors.New("path rejected")
	// ErrResourceMissing indicates an input file absent during rendering.
	ErrResourceMissing = errors.New("resource missing")
)
