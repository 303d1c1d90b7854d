package model

import "errors"

// ErrorKind is the closed classification set for user-facing failures.
// Every error surfaced outside the adapters carries one of these kinds;
// callers branch on the kind, never on message text.
type ErrorKind string

const (
	ErrValidation         ErrorKind = "validation"
	ErrInvalidCredentials ErrorKind = "invalid_credentials"
	ErrSessionExpired     ErrorKind = "session_expired"
	ErrForbidden          ErrorKind = "forbidden"
	ErrNotFound           ErrorKind = "not_found"
	ErrConflict           ErrorKind = "conflict"
	ErrInvalidData        ErrorKind = "invalid_data"
	ErrServer             ErrorKind = "server_error"
	ErrUnavailable        ErrorKind = "service_unavailable"
	ErrGeneric            ErrorKind = "generic"
)

// AppError is a classified, display-ready failure. Message never contains
// URLs, status lines, or other transport detail.
type AppError struct {
	Kind    ErrorKind
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

// NewAppError builds a classified error with the given display message.
func NewAppError(kind ErrorKind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

// KindOf extracts the classification from an error chain. Errors that carry
// no AppError classify as generic.
func KindOf(err error) ErrorKind {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ErrGeneric
}

// UserMessage returns the display text for an error chain, falling back to a
// generic message for unclassified errors so raw technical detail never
// reaches the user.
func UserMessage(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "Something went wrong. Please try again."
}
