package schedule

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks a missing day or event.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a duplicate label, date, name or identifier.
	ErrConflict = errors.New("conflict")
	// ErrValidation marks malformed input.
	ErrValidation = errors.New("invalid input")
)

// Error carries a user-facing message and one of the sentinel kinds above,
// so errors.Is works without the kind leaking into the message.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func dayNotFound(dayID string) error {
	return newError(ErrNotFound, "Day with ID '%s' not found", dayID)
}

func eventNotFound(eventID string) error {
	return newError(ErrNotFound, "Event with ID '%s' not found", eventID)
}
