package progress

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed mutation input.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks a missing semester, course, or sub-topic.
	ErrNotFound = errors.New("not found")
)

// Error describes a rejected operation. The record is never modified when an
// operation returns one.
type Error struct {
	Op      string
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("progress.%s: %s", e.Op, e.Message)
}

// Unwrap exposes Kind so errors.Is(err, ErrValidation) works.
func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(op string, kind error, msg string) *Error {
	return &Error{Op: op, Kind: kind, Message: msg}
}

// IsValidation reports whether err is a validation rejection.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound reports whether err is a not-found rejection.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
