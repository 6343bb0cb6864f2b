package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	// ErrValidationFailed marks a structurally invalid result payload; the
	// attempt is logged as failed but nothing else is written.
	ErrValidationFailed = errors.New("result validation failed")
)
