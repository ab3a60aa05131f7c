// Package memory provides an in-process EventStore. It backs the service
// tests and the default wiring when no database is configured.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"communityhub/internal/domain"
)

// EventStore keeps event aggregates in a map guarded by a mutex. Reads and
// writes hand out deep copies so no caller shares mutable state with the
// store, and Update performs the same compare-and-swap contract as the
// database-backed stores.
type EventStore struct {
	mu     sync.RWMutex
	events map[string]*domain.Event
}

// NewEventStore returns an empty in-memory store.
func NewEventStore() *EventStore {
	return &EventStore{events: make(map[string]*domain.Event)}
}

func (s *EventStore) Create(ctx context.Context, ev *domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	ev.Version = 1
	s.events[ev.ID] = ev.Clone()
	return nil
}

func (s *EventStore) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ev, ok := s.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return ev.Clone(), nil
}

func (s *EventStore) Update(ctx context.Context, ev *domain.Event, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.events[ev.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.Version != expectedVersion {
		return domain.ErrVersionConflict
	}
	cp := ev.Clone()
	cp.Version = expectedVersion + 1
	s.events[ev.ID] = cp
	ev.Version = cp.Version
	return nil
}

func (s *EventStore) List(ctx context.Context, filter domain.EventFilter, p domain.PaginationParams) ([]*domain.Event, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*domain.Event
	for _, ev := range s.events {
		if !matches(ev, filter) {
			continue
		}
		matched = append(matched, ev.Clone())
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Schedule.StartsAt.Equal(matched[j].Schedule.StartsAt) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].Schedule.StartsAt.Before(matched[j].Schedule.StartsAt)
	})

	total := len(matched)
	offset := p.Offset()
	if offset >= total {
		return []*domain.Event{}, total, nil
	}
	end := offset + p.PageSize
	if p.PageSize <= 0 || end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func matches(ev *domain.Event, f domain.EventFilter) bool {
	if len(f.Statuses) > 0 {
		ok := false
		for _, st := range f.Statuses {
			if ev.Status == st {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if f.Track != "" && ev.Track != f.Track {
		return false
	}
	if f.StartsAfter != nil && !ev.Schedule.StartsAt.After(*f.StartsAfter) {
		return false
	}
	if f.AttendeeID != "" {
		if _, ok := ev.FindAttendee(f.AttendeeID); !ok {
			return false
		}
	}
	return true
}
