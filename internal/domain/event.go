package domain

import (
	"context"
	"fmt"
	"time"
)

// Track gates event visibility and registration by subscription tier.
type Track string

const (
	TrackAll        Track = "all"
	TrackAcademy    Track = "academy"
	TrackCoachLab   Track = "coachlab"
	TrackLeadership Track = "leadership"
	TrackBuilder    Track = "builder"
)

// ValidTrack reports whether t is a known track value.
func ValidTrack(t Track) bool {
	switch t {
	case TrackAll, TrackAcademy, TrackCoachLab, TrackLeadership, TrackBuilder:
		return true
	}
	return false
}

// EventStatus is the lifecycle status of an event.
type EventStatus string

const (
	EventDraft     EventStatus = "draft"
	EventPublished EventStatus = "published"
	EventLive      EventStatus = "live"
	EventCompleted EventStatus = "completed"
	EventCancelled EventStatus = "cancelled"
)

// Terminal reports whether attendee state may no longer be mutated.
func (s EventStatus) Terminal() bool {
	return s == EventCompleted || s == EventCancelled
}

// Window is a half-open-to-the-caller time range; both bounds are inclusive.
type Window struct {
	OpensAt  time.Time `json:"opens_at" bson:"opens_at"`
	ClosesAt time.Time `json:"closes_at" bson:"closes_at"`
}

// Contains reports whether now falls within the window (bounds inclusive).
func (w Window) Contains(now time.Time) bool {
	return !now.Before(w.OpensAt) && !now.After(w.ClosesAt)
}

// Schedule is the event's running time.
type Schedule struct {
	StartsAt time.Time `json:"starts_at" bson:"starts_at"`
	EndsAt   time.Time `json:"ends_at" bson:"ends_at"`
}

// Event is the aggregate root for registration and capacity management.
// Attendees and Waitlist are owned by the event: entries are created by
// registration, removed by cancellation or promotion, and never referenced
// from outside the aggregate. The whole aggregate is persisted atomically
// with a compare-and-swap on Version.
// swagger:model Event
type Event struct {
	ID                 string          `json:"id" bson:"_id"`
	Title              string          `json:"title" bson:"title"`
	OwnerID            string          `json:"owner_id" bson:"owner_id"`
	Track              Track           `json:"track" bson:"track"`
	Capacity           *int            `json:"capacity,omitempty" bson:"capacity,omitempty"`
	RegistrationWindow Window          `json:"registration_window" bson:"registration_window"`
	Schedule           Schedule        `json:"schedule" bson:"schedule"`
	WaitlistEnabled    bool            `json:"waitlist_enabled" bson:"waitlist_enabled"`
	Status             EventStatus     `json:"status" bson:"status"`
	Attendees          []Attendee      `json:"attendees" bson:"attendees"`
	Waitlist           []WaitlistEntry `json:"waitlist" bson:"waitlist"`
	Analytics          EventAnalytics  `json:"analytics" bson:"analytics"`
	Version            int64           `json:"version" bson:"version"`
	CreatedAt          time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" bson:"updated_at"`
}

// NewEvent returns a draft event. ID is set by the store on create.
func NewEvent(title, ownerID string, track Track, capacity *int, window Window, schedule Schedule, waitlistEnabled bool, now time.Time) *Event {
	return &Event{
		Title:              title,
		OwnerID:            ownerID,
		Track:              track,
		Capacity:           capacity,
		RegistrationWindow: window,
		Schedule:           schedule,
		WaitlistEnabled:    waitlistEnabled,
		Status:             EventDraft,
		Attendees:          []Attendee{},
		Waitlist:           []WaitlistEntry{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// HasCapacity reports whether at least one attendee slot is free.
func (e *Event) HasCapacity() bool {
	return e.Capacity == nil || len(e.Attendees) < *e.Capacity
}

func (e *Event) attendeeIndex(principalID string) int {
	for i := range e.Attendees {
		if e.Attendees[i].PrincipalID == principalID {
			return i
		}
	}
	return -1
}

func (e *Event) waitlistIndex(principalID string) int {
	for i := range e.Waitlist {
		if e.Waitlist[i].PrincipalID == principalID {
			return i
		}
	}
	return -1
}

// FindAttendee returns the attendee record for the principal, if any.
func (e *Event) FindAttendee(principalID string) (*Attendee, bool) {
	if i := e.attendeeIndex(principalID); i >= 0 {
		return &e.Attendees[i], true
	}
	return nil, false
}

// OnWaitlist reports whether the principal holds a waitlist entry.
func (e *Event) OnWaitlist(principalID string) bool {
	return e.waitlistIndex(principalID) >= 0
}

// AddAttendee appends a registered attendee. Returns ErrAlreadyRegistered or
// ErrAlreadyWaitlisted on double occupancy and ErrEventFull when no slot is
// free.
func (e *Event) AddAttendee(principalID string, now time.Time) error {
	if e.attendeeIndex(principalID) >= 0 {
		return ErrAlreadyRegistered
	}
	if e.waitlistIndex(principalID) >= 0 {
		return ErrAlreadyWaitlisted
	}
	if !e.HasCapacity() {
		return ErrEventFull
	}
	e.Attendees = append(e.Attendees, Attendee{
		PrincipalID:  principalID,
		RegisteredAt: now,
		Status:       AttendeeRegistered,
	})
	return nil
}

// JoinWaitlist appends a waitlist entry behind any existing entries.
func (e *Event) JoinWaitlist(principalID string, now time.Time) error {
	if e.attendeeIndex(principalID) >= 0 {
		return ErrAlreadyRegistered
	}
	if e.waitlistIndex(principalID) >= 0 {
		return ErrAlreadyWaitlisted
	}
	e.Waitlist = append(e.Waitlist, WaitlistEntry{PrincipalID: principalID, JoinedAt: now})
	return nil
}

// RemoveAttendee deletes the principal's attendee record, preserving order.
func (e *Event) RemoveAttendee(principalID string) bool {
	i := e.attendeeIndex(principalID)
	if i < 0 {
		return false
	}
	e.Attendees = append(e.Attendees[:i], e.Attendees[i+1:]...)
	return true
}

// RemoveFromWaitlist deletes the principal's waitlist entry, preserving order.
func (e *Event) RemoveFromWaitlist(principalID string) bool {
	i := e.waitlistIndex(principalID)
	if i < 0 {
		return false
	}
	e.Waitlist = append(e.Waitlist[:i], e.Waitlist[i+1:]...)
	return true
}

// PopWaitlist removes and returns the earliest waitlist entry. Ties on
// JoinedAt resolve by insertion order.
func (e *Event) PopWaitlist() (WaitlistEntry, bool) {
	if len(e.Waitlist) == 0 {
		return WaitlistEntry{}, false
	}
	earliest := 0
	for i := 1; i < len(e.Waitlist); i++ {
		if e.Waitlist[i].JoinedAt.Before(e.Waitlist[earliest].JoinedAt) {
			earliest = i
		}
	}
	entry := e.Waitlist[earliest]
	e.Waitlist = append(e.Waitlist[:earliest], e.Waitlist[earliest+1:]...)
	return entry, true
}

// CheckInvariants verifies the aggregate's structural invariants. Services
// call it before persisting; a non-nil result aborts the write.
func (e *Event) CheckInvariants() error {
	if e.Capacity != nil && len(e.Attendees) > *e.Capacity {
		return fmt.Errorf("event %s: %d attendees exceed capacity %d", e.ID, len(e.Attendees), *e.Capacity)
	}
	seen := make(map[string]struct{}, len(e.Attendees)+len(e.Waitlist))
	for i := range e.Attendees {
		id := e.Attendees[i].PrincipalID
		if _, dup := seen[id]; dup {
			return fmt.Errorf("event %s: principal %s occupies more than one slot", e.ID, id)
		}
		seen[id] = struct{}{}
	}
	for i := range e.Waitlist {
		id := e.Waitlist[i].PrincipalID
		if _, dup := seen[id]; dup {
			return fmt.Errorf("event %s: principal %s occupies more than one slot", e.ID, id)
		}
		seen[id] = struct{}{}
	}
	if e.Analytics.Registrations != len(e.Attendees) {
		return fmt.Errorf("event %s: analytics registrations %d does not match %d attendees", e.ID, e.Analytics.Registrations, len(e.Attendees))
	}
	return nil
}

// Clone returns a deep copy of the event. Stores hand out clones so no
// caller holds references into another caller's aggregate.
func (e *Event) Clone() *Event {
	cp := *e
	if e.Capacity != nil {
		c := *e.Capacity
		cp.Capacity = &c
	}
	cp.Attendees = make([]Attendee, len(e.Attendees))
	for i := range e.Attendees {
		a := e.Attendees[i]
		if a.CheckedInAt != nil {
			t := *a.CheckedInAt
			a.CheckedInAt = &t
		}
		if a.Feedback != nil {
			f := *a.Feedback
			a.Feedback = &f
		}
		cp.Attendees[i] = a
	}
	cp.Waitlist = make([]WaitlistEntry, len(e.Waitlist))
	copy(cp.Waitlist, e.Waitlist)
	return &cp
}

// EventFilter narrows List queries. Zero values mean "no constraint".
type EventFilter struct {
	Statuses    []EventStatus
	Track       Track
	StartsAfter *time.Time
	AttendeeID  string
}

// EventStore persists Event aggregates. Update must be atomic at the
// granularity of one aggregate: it replaces the stored event only when the
// stored version equals expectedVersion, incrementing Version on success,
// and returns ErrVersionConflict otherwise.
type EventStore interface {
	Create(ctx context.Context, ev *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	Update(ctx context.Context, ev *Event, expectedVersion int64) error
	List(ctx context.Context, filter EventFilter, p PaginationParams) ([]*Event, int, error)
}

// EventLifecycleService covers organizer operations on the event itself.
type EventLifecycleService interface {
	CreateEvent(ctx context.Context, principal Principal, ev *Event) error
	Publish(ctx context.Context, principal Principal, eventID string) (*Event, error)
	MarkLive(ctx context.Context, principal Principal, eventID string) (*Event, error)
	Complete(ctx context.Context, principal Principal, eventID string, now time.Time) (*Event, error)
	CancelEvent(ctx context.Context, principal Principal, eventID string) (*Event, error)
}
