package services

import (
	"context"
	"fmt"
	"time"

	"communityhub/internal/domain"
)

type eventLifecycleService struct {
	store          domain.EventStore
	clock          domain.Clock
	contextTimeout time.Duration
}

// NewEventLifecycleService creates the organizer-facing lifecycle service.
func NewEventLifecycleService(store domain.EventStore, clock domain.Clock, timeout time.Duration) domain.EventLifecycleService {
	return &eventLifecycleService{
		store:          store,
		clock:          clock,
		contextTimeout: timeout,
	}
}

func (s *eventLifecycleService) CreateEvent(ctx context.Context, principal domain.Principal, ev *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if ev.Title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if !domain.ValidTrack(ev.Track) {
		return fmt.Errorf("%w: unknown track %q", domain.ErrInvalidInput, ev.Track)
	}
	if ev.Capacity != nil && *ev.Capacity < 1 {
		return fmt.Errorf("%w: capacity must be positive", domain.ErrInvalidInput)
	}
	if !ev.Schedule.EndsAt.After(ev.Schedule.StartsAt) {
		return fmt.Errorf("%w: event must end after it starts", domain.ErrInvalidInput)
	}
	if ev.RegistrationWindow.ClosesAt.Before(ev.RegistrationWindow.OpensAt) {
		return fmt.Errorf("%w: registration window must close after it opens", domain.ErrInvalidInput)
	}
	if ev.RegistrationWindow.ClosesAt.After(ev.Schedule.StartsAt) {
		return fmt.Errorf("%w: registration must close by the event start", domain.ErrInvalidInput)
	}

	now := s.clock.Now()
	ev.OwnerID = principal.ID
	ev.Status = domain.EventDraft
	ev.Attendees = []domain.Attendee{}
	ev.Waitlist = []domain.WaitlistEntry{}
	ev.Analytics = domain.EventAnalytics{}
	ev.CreatedAt = now
	ev.UpdatedAt = now

	if err := s.store.Create(ctx, ev); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// transition applies a status change guarded by canManage and the allowed
// source statuses.
func (s *eventLifecycleService) transition(ctx context.Context, principal domain.Principal, eventID string, from []domain.EventStatus, to domain.EventStatus, updatedAt time.Time, beforePersist func(ev *domain.Event)) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return mutateEvent(ctx, s.store, eventID, updatedAt, func(ev *domain.Event) error {
		if !canManage(principal, ev) {
			return domain.ErrForbidden
		}
		allowed := false
		for _, st := range from {
			if ev.Status == st {
				allowed = true
				break
			}
		}
		if !allowed {
			return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, ev.Status, to)
		}
		ev.Status = to
		if beforePersist != nil {
			beforePersist(ev)
		}
		return nil
	})
}

func canManage(p domain.Principal, ev *domain.Event) bool {
	return ev.OwnerID == p.ID || p.IsStaff()
}

func (s *eventLifecycleService) Publish(ctx context.Context, principal domain.Principal, eventID string) (*domain.Event, error) {
	return s.transition(ctx, principal, eventID, []domain.EventStatus{domain.EventDraft}, domain.EventPublished, s.clock.Now(), nil)
}

func (s *eventLifecycleService) MarkLive(ctx context.Context, principal domain.Principal, eventID string) (*domain.Event, error) {
	return s.transition(ctx, principal, eventID, []domain.EventStatus{domain.EventPublished}, domain.EventLive, s.clock.Now(), nil)
}

// Complete closes the event: attendees that never checked in become no-shows
// and the final attendance rate and average rating are computed.
func (s *eventLifecycleService) Complete(ctx context.Context, principal domain.Principal, eventID string, now time.Time) (*domain.Event, error) {
	return s.transition(ctx, principal, eventID,
		[]domain.EventStatus{domain.EventPublished, domain.EventLive}, domain.EventCompleted, now,
		func(ev *domain.Event) {
			for i := range ev.Attendees {
				if ev.Attendees[i].Status == domain.AttendeeRegistered {
					ev.Attendees[i].Status = domain.AttendeeNoShow
				}
			}
		})
}

func (s *eventLifecycleService) CancelEvent(ctx context.Context, principal domain.Principal, eventID string) (*domain.Event, error) {
	return s.transition(ctx, principal, eventID,
		[]domain.EventStatus{domain.EventDraft, domain.EventPublished, domain.EventLive}, domain.EventCancelled, s.clock.Now(), nil)
}
