package domain

import (
	"errors"
	"fmt"
)

// ErrorKind discriminates the five failure categories of the adjustment
// engine so callers can map them to responses without matching on message
// text.
type ErrorKind string

const (
	ErrKindValidation     ErrorKind = "VALIDATION"
	ErrKindNotFound       ErrorKind = "NOT_FOUND"
	ErrKindStateConflict  ErrorKind = "STATE_CONFLICT"
	ErrKindAuthorization  ErrorKind = "AUTHORIZATION"
	ErrKindPaymentFailure ErrorKind = "PAYMENT_FAILURE"
)

type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func NewValidationError(format string, args ...any) *Error {
	return &Error{Kind: ErrKindValidation, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(format string, args ...any) *Error {
	return &Error{Kind: ErrKindNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewStateConflictError(format string, args ...any) *Error {
	return &Error{Kind: ErrKindStateConflict, Message: fmt.Sprintf(format, args...)}
}

func NewAuthorizationError(format string, args ...any) *Error {
	return &Error{Kind: ErrKindAuthorization, Message: fmt.Sprintf(format, args...)}
}

// NewPaymentFailureError wraps a gateway failure. This is the only category
// after which the precipitating status is deliberately left unchanged so the
// operation can be retried.
func NewPaymentFailureError(cause error, format string, args ...any) *Error {
	return &Error{Kind: ErrKindPaymentFailure, Message: fmt.Sprintf(format, args...), Err: cause}
}

// KindOf returns the taxonomy kind of err, or "" for errors that did not
// originate from this engine.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsKind(err error, kind ErrorKind) bool { return KindOf(err) == kind }
