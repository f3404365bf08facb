package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Services return *Error values wrapping one of these so that
// callers can branch with errors.Is.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	ErrInvalid  = errors.New("invalid input")
	ErrRule     = errors.New("business rule violation")
)

// Error is a failure of a given kind with a client-facing message.
type Error struct {
	Kind    error
	Message string
}

// Error returns the client-facing message.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the kind to errors.Is.
func (e *Error) Unwrap() error {
	return e.Kind
}

// Errorf builds an *Error of the given kind.
func Errorf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
