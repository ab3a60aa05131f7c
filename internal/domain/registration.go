package domain

import (
	"context"
	"time"
)

// RegistrationOutcome is the result kind of a registration request.
type RegistrationOutcome string

const (
	OutcomeRegistered RegistrationOutcome = "registered"
	OutcomeWaitlisted RegistrationOutcome = "waitlisted"
)

// RegistrationResult reports where the principal landed.
// swagger:model RegistrationResult
type RegistrationResult struct {
	EventID      string              `json:"event_id"`
	PrincipalID  string              `json:"principal_id"`
	Outcome      RegistrationOutcome `json:"outcome"`
	RegisteredAt time.Time           `json:"registered_at"`
}

// CancellationResult reports a cancellation and, when a waitlisted principal
// took the freed slot, who was promoted.
// swagger:model CancellationResult
type CancellationResult struct {
	EventID             string `json:"event_id"`
	PrincipalID         string `json:"principal_id"`
	PromotedPrincipalID string `json:"promoted_principal_id,omitempty"`
}

// CheckInResult reports a successful check-in.
// swagger:model CheckInResult
type CheckInResult struct {
	EventID     string    `json:"event_id"`
	PrincipalID string    `json:"principal_id"`
	CheckedInAt time.Time `json:"checked_in_at"`
}

// RegistrationService is the registration state machine. All methods operate
// on a single event aggregate under optimistic concurrency; the caller's
// clock is passed in so window checks are testable and never scheduled
// internally.
type RegistrationService interface {
	Register(ctx context.Context, principal Principal, eventID string, now time.Time) (*RegistrationResult, error)
	Cancel(ctx context.Context, principal Principal, eventID string, now time.Time) (*CancellationResult, error)
	CheckIn(ctx context.Context, principal Principal, eventID string, now time.Time) (*CheckInResult, error)
	SubmitFeedback(ctx context.Context, principal Principal, eventID string, rating int, comment string) error
}

// Notifier informs a principal they were promoted from the waitlist.
// Delivery is fire-and-forget: implementations may fail, and callers must
// never let a notification failure roll back the mutation that caused it.
type Notifier interface {
	NotifyPromoted(ctx context.Context, principalID string, ev *Event) error
}
