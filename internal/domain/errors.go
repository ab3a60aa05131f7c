package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services and repositories.
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")

	// ErrUnauthenticated is returned by the principal provider when a token
	// is missing, malformed, or expired.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrInvalidInput marks validation failures on caller-supplied data.
	ErrInvalidInput = errors.New("invalid input")
)

// Registration errors. All are terminal for the request that produced them:
// retrying the same call without changing state will fail the same way.
var (
	ErrAccessDenied      = errors.New("access denied")
	ErrAlreadyRegistered = errors.New("already registered")
	ErrAlreadyWaitlisted = errors.New("already waitlisted")
	ErrEventFull         = errors.New("event is full")
	ErrNotRegistered     = errors.New("not registered")
	ErrAlreadyCheckedIn  = errors.New("already checked in")
	ErrCheckInNotOpen    = errors.New("check-in window is not open")
	ErrNotAttended       = errors.New("attendee has not checked in")
	ErrInvalidRating     = errors.New("rating must be between 1 and 5")

	// ErrEventNotModifiable is returned for attendee mutations on an event in
	// a terminal status (completed or cancelled).
	ErrEventNotModifiable = errors.New("event no longer accepts changes")

	// ErrInvalidTransition is returned for a lifecycle change the event's
	// current status does not permit.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Transient errors. Callers may retry these; everything above must surface
// to the API layer unchanged.
var (
	// ErrVersionConflict means the aggregate changed between load and persist.
	ErrVersionConflict = errors.New("version conflict")

	// ErrStoreUnavailable means the store could not be reached or timed out.
	ErrStoreUnavailable = errors.New("event store unavailable")
)

// AccessDeniedError carries the policy deny reason. It matches
// errors.Is(err, ErrAccessDenied) so callers can branch on the kind without
// losing the reason.
type AccessDeniedError struct {
	Reason string
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("access denied: %s", e.Reason)
}

func (e *AccessDeniedError) Is(target error) bool {
	return target == ErrAccessDenied
}
