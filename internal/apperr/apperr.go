// Package apperr defines the error kinds surfaced by the API.
package apperr

import (
	"errors"
	"net/http"
)

// Kind is a machine-readable error category.
type Kind string

const (
	Unauthenticated     Kind = "unauthenticated"
	InvalidToken        Kind = "invalid_token"
	InvalidCredentials  Kind = "invalid_credentials"
	Forbidden           Kind = "forbidden"
	NotFound            Kind = "not_found"
	ValidationFailed    Kind = "validation_failed"
	Conflict            Kind = "conflict"
	GardenFull          Kind = "garden_full"
	EventFull           Kind = "event_full"
	NoFieldsToUpdate    Kind = "no_fields_to_update"
	DatabaseUnavailable Kind = "database_unavailable"
	Unexpected          Kind = "unexpected"
)

// Error carries a kind, a caller-safe message and an optional internal cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap returns an error of the given kind that keeps err as its cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or Unexpected.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unexpected
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Retryable reports whether a caller may retry the operation with backoff.
func Retryable(err error) bool {
	return Is(err, DatabaseUnavailable)
}

// Status maps a kind to its HTTP status code.
func Status(kind Kind) int {
	switch kind {
	case Unauthenticated, InvalidToken, InvalidCredentials:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case ValidationFailed, NoFieldsToUpdate:
		return http.StatusBadRequest
	case Conflict, GardenFull, EventFull:
		return http.StatusConflict
	case DatabaseUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Validation is shorthand for New(ValidationFailed, message).
func Validation(message string) *Error { return New(ValidationFailed, message) }

// Forbid is shorthand for New(Forbidden, message).
func Forbid(message string) *Error { return New(Forbidden, message) }

// Missing is shorthand for New(NotFound, message).
func Missing(message string) *Error { return New(NotFound, message) }
