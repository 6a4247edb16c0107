// Package apperror defines the error taxonomy shared by the session store,
// the gateway client, and the event list controller.
package apperror

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthentication marks rejected or missing credentials.
	ErrAuthentication = errors.New("authentication failed")
	// ErrFetch marks any gateway call failure: network, non-2xx, parse.
	ErrFetch = errors.New("fetch failed")
	// ErrNotFound marks operations that target an id absent from the
	// local collection.
	ErrNotFound = errors.New("not found")
	// ErrValidation marks input rejected before any network call.
	ErrValidation = errors.New("validation failed")
)

// AppError carries a sentinel kind plus a human-readable message suitable
// for direct display to the operator.
type AppError struct {
	Err     error  // sentinel kind
	Message string // human-readable message
	Field   string // optional: input field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Authentication returns an AppError for a rejected login or a missing
// credential.
func Authentication(message string) *AppError {
	return &AppError{
		Err:     ErrAuthentication,
		Message: message,
	}
}

// Fetch returns an AppError for a failed gateway operation, wrapping the
// transport-level cause.
func Fetch(op string, cause error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %s: %w", ErrFetch, op, cause),
		Message: fmt.Sprintf("%s failed: %v", op, cause),
	}
}

// NotFound returns an AppError for an event id absent from the collection.
func NotFound(id int64) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("event %d not found", id),
	}
}

// ValidationFailed returns an AppError for input rejected locally.
func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}
