package services

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the services. Controllers translate these into
// HTTP status codes in one place.
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
)

// StateError reports a transition that is not legal from the post's current
// status. It maps to a 409 response carrying the current status.
type StateError struct {
	Op      string
	Current string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s post in %s status", e.Op, e.Current)
}

// ValidationError reports a malformed request, e.g. zero or multiple targets.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func invalidState(op, current string) error {
	return &StateError{Op: op, Current: current}
}

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
