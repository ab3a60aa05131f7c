package domain

import (
	"context"
	"time"
)

// EventPage is one page of events plus the total match count.
type EventPage struct {
	Events []*Event
	Total  int
}

// MyRegistration pairs an event with the caller's attendee record in it.
// swagger:model MyRegistration
type MyRegistration struct {
	Event    *Event   `json:"event"`
	Attendee Attendee `json:"attendee"`
}

// EventQueryService is the read side: listing and filtering, no invariants
// of its own. Results are filtered to events the principal may see.
type EventQueryService interface {
	GetEvent(ctx context.Context, principal Principal, eventID string) (*Event, error)
	ListUpcoming(ctx context.Context, principal Principal, now time.Time, p PaginationParams) (*EventPage, error)
	ListByTrack(ctx context.Context, principal Principal, track Track, p PaginationParams) (*EventPage, error)
	ListMyRegistrations(ctx context.Context, principal Principal) ([]*MyRegistration, error)
}
