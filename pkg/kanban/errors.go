package kanban

import (
	"errors"
	"fmt"
)

var (
	ErrGestureInProgress = errors.New("kanban: a drag gesture is already in progress")
	ErrUnknownConsultant = errors.New("kanban: consultant is not on the board")
	ErrNoGesture         = errors.New("kanban: no drag gesture in progress")
	ErrUnknownPayload    = errors.New("kanban: unsupported payload")
)

// ValidationError is returned before any network call when an input is
// missing or reserved. It is never reported through Status.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("kanban: invalid %s: %s", e.Field, e.Reason)
}

// TransportError wraps a failed gateway call, network or non-success
// response alike.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("kanban: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// NotFoundError means the store does not know the id the action referred to,
// usually because another viewer deleted it first.
type NotFoundError struct {
	Op  string
	ID  string
	Err error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("kanban: %s: %s not found", e.Op, e.ID)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a local validation failure.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
