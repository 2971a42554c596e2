package app

import "errors"

// Error categories. Every service error wraps exactly one of them, so callers
// can map outcomes with errors.Is without knowing each specific error.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
)

type serviceError struct {
	msg  string
	kind error
}

func (e *serviceError) Error() string { return e.msg }
func (e *serviceError) Unwrap() error { return e.kind }

func newServiceError(kind error, msg string) error {
	return &serviceError{msg: msg, kind: kind}
}

// Not-found errors
var (
	ErrSubscriberNotFound = newServiceError(ErrNotFound, "subscriber does not exist")
	ErrCycleNotFound      = newServiceError(ErrNotFound, "cycle does not exist")
	ErrUsageNotFound      = newServiceError(ErrNotFound, "usage entry does not exist")
	// ErrNoActiveCycle means usage history cannot be resolved, which is not the same as zero usage.
	ErrNoActiveCycle = newServiceError(ErrNotFound, "no billing cycle found for this subscriber and number")
)

// Conflict errors
var (
	ErrEmailTaken     = newServiceError(ErrConflict, "email is already in use")
	ErrMDNMismatch    = newServiceError(ErrConflict, "number does not match the subscriber's current number")
	ErrCycleOverlap   = newServiceError(ErrConflict, "cycle start falls within an existing cycle")
	ErrDuplicateCycle = newServiceError(ErrConflict, "cycle with the same start and end already exists")
	ErrDuplicateUsage = newServiceError(ErrConflict, "usage for this date has already been recorded")
	ErrEmptyMDN       = newServiceError(ErrConflict, "source subscriber has no number to transfer")
)

// Invalid-input errors
var (
	ErrInvalidRange   = newServiceError(ErrInvalidInput, "cycle start date is after its end date")
	ErrInvalidAmount  = newServiceError(ErrInvalidInput, "usage amount must not be negative")
	ErrSameSubscriber = newServiceError(ErrInvalidInput, "cannot transfer a number to the same subscriber")
)
