package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"communityhub/internal/access"
	"communityhub/internal/domain"
)

type eventQueryService struct {
	store          domain.EventStore
	contextTimeout time.Duration
}

// NewEventQueryService creates the read-side listing service. It has no
// invariants of its own and delegates entirely to the store.
func NewEventQueryService(store domain.EventStore, timeout time.Duration) domain.EventQueryService {
	return &eventQueryService{store: store, contextTimeout: timeout}
}

func (s *eventQueryService) GetEvent(ctx context.Context, principal domain.Principal, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	ev, err := s.store.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !access.CanView(principal, ev) {
		return nil, domain.ErrForbidden
	}
	return ev, nil
}

func (s *eventQueryService) ListUpcoming(ctx context.Context, principal domain.Principal, now time.Time, p domain.PaginationParams) (*domain.EventPage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	filter := domain.EventFilter{
		Statuses:    []domain.EventStatus{domain.EventPublished, domain.EventLive},
		StartsAfter: &now,
	}
	return s.list(ctx, principal, filter, p)
}

func (s *eventQueryService) ListByTrack(ctx context.Context, principal domain.Principal, track domain.Track, p domain.PaginationParams) (*domain.EventPage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !domain.ValidTrack(track) {
		return nil, fmt.Errorf("%w: unknown track %q", domain.ErrInvalidInput, track)
	}
	filter := domain.EventFilter{
		Statuses: []domain.EventStatus{domain.EventPublished, domain.EventLive, domain.EventCompleted},
		Track:    track,
	}
	return s.list(ctx, principal, filter, p)
}

func (s *eventQueryService) list(ctx context.Context, principal domain.Principal, filter domain.EventFilter, p domain.PaginationParams) (*domain.EventPage, error) {
	events, total, err := s.store.List(ctx, filter, p)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	visible := make([]*domain.Event, 0, len(events))
	for _, ev := range events {
		if access.CanView(principal, ev) {
			visible = append(visible, ev)
		}
	}
	return &domain.EventPage{Events: visible, Total: total}, nil
}

func (s *eventQueryService) ListMyRegistrations(ctx context.Context, principal domain.Principal) ([]*domain.MyRegistration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	filter := domain.EventFilter{AttendeeID: principal.ID}
	events, _, err := s.store.List(ctx, filter, domain.PaginationParams{Page: 1, PageSize: 200})
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}

	result := make([]*domain.MyRegistration, 0, len(events))
	for _, ev := range events {
		a, ok := ev.FindAttendee(principal.ID)
		if !ok {
			continue
		}
		result = append(result, &domain.MyRegistration{Event: ev, Attendee: *a})
	}
	return result, nil
}
