package schedule

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned when input is rejected before any state changes.
	ErrValidation = errors.New("validation failed")
	// ErrLocked is returned when an order mutation is refused by an active lock.
	ErrLocked = errors.New("order is locked")
	// ErrPersistence is returned when a write failed and local state was rolled back.
	ErrPersistence = errors.New("persistence failure")
)

// PersistenceError reports a failed write for a named operation. The
// in-memory state it guarded has already been restored.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}

// Invalidf builds an error wrapping ErrValidation.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
