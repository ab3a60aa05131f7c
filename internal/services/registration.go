package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"communityhub/internal/access"
	"communityhub/internal/domain"
)

// checkInLeadTime is how long before the scheduled start check-in opens.
// Fixed policy, not configurable per event; callers needing a different
// window must wrap the service.
const checkInLeadTime = 30 * time.Minute

// Version-conflict retry policy for load-mutate-persist cycles. Only
// ErrVersionConflict is retried; every other failure surfaces immediately.
const (
	casAttempts = 3
	casBackoff  = 20 * time.Millisecond
)

type registrationService struct {
	store          domain.EventStore
	notifier       domain.Notifier
	clock          domain.Clock
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewRegistrationService creates the registration state machine. notifier
// may be nil; promotions are then silent.
func NewRegistrationService(
	store domain.EventStore,
	notifier domain.Notifier,
	clock domain.Clock,
	logger *slog.Logger,
	timeout time.Duration,
) domain.RegistrationService {
	return &registrationService{
		store:          store,
		notifier:       notifier,
		clock:          clock,
		logger:         logger,
		contextTimeout: timeout,
	}
}

// mutateEvent runs one load-mutate-persist cycle against the store, retrying
// on version conflicts. fn mutates the loaded aggregate in place; analytics
// are recomputed and invariants checked before every persist, so a mutation
// that would corrupt the aggregate aborts with no partial write.
func mutateEvent(ctx context.Context, store domain.EventStore, eventID string, updatedAt time.Time, fn func(ev *domain.Event) error) (*domain.Event, error) {
	var lastErr error
	for attempt := 0; attempt < casAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("retry aborted: %w", ctx.Err())
			case <-time.After(time.Duration(attempt) * casBackoff):
			}
		}

		ev, err := store.GetByID(ctx, eventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrNotFound
			}
			return nil, fmt.Errorf("load event: %w", err)
		}

		expected := ev.Version
		if err := fn(ev); err != nil {
			return nil, err
		}
		RecomputeAnalytics(ev)
		if err := ev.CheckInvariants(); err != nil {
			return nil, fmt.Errorf("invariant violated, aborting write: %w", err)
		}
		ev.UpdatedAt = updatedAt

		if err := store.Update(ctx, ev, expected); err != nil {
			if errors.Is(err, domain.ErrVersionConflict) {
				lastErr = err
				continue
			}
			return nil, fmt.Errorf("persist event: %w", err)
		}
		return ev, nil
	}
	return nil, fmt.Errorf("giving up after %d attempts: %w", casAttempts, lastErr)
}

func (s *registrationService) Register(ctx context.Context, principal domain.Principal, eventID string, now time.Time) (*domain.RegistrationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var result *domain.RegistrationResult
	_, err := mutateEvent(ctx, s.store, eventID, now, func(ev *domain.Event) error {
		if d := access.CanRegister(principal, ev, now); !d.Allowed {
			return &domain.AccessDeniedError{Reason: string(d.Reason)}
		}

		err := ev.AddAttendee(principal.ID, now)
		if err == nil {
			result = &domain.RegistrationResult{
				EventID:      ev.ID,
				PrincipalID:  principal.ID,
				Outcome:      domain.OutcomeRegistered,
				RegisteredAt: now,
			}
			return nil
		}
		if errors.Is(err, domain.ErrEventFull) && ev.WaitlistEnabled {
			if werr := ev.JoinWaitlist(principal.ID, now); werr != nil {
				return werr
			}
			result = &domain.RegistrationResult{
				EventID:      ev.ID,
				PrincipalID:  principal.ID,
				Outcome:      domain.OutcomeWaitlisted,
				RegisteredAt: now,
			}
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *registrationService) Cancel(ctx context.Context, principal domain.Principal, eventID string, now time.Time) (*domain.CancellationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var result *domain.CancellationResult
	ev, err := mutateEvent(ctx, s.store, eventID, now, func(ev *domain.Event) error {
		if ev.Status.Terminal() {
			return domain.ErrEventNotModifiable
		}
		result = &domain.CancellationResult{EventID: ev.ID, PrincipalID: principal.ID}

		if ev.RemoveAttendee(principal.ID) {
			// A slot just freed; promote the earliest waitlisted principal,
			// at most one per cancellation. The promotion timestamp is now,
			// not the original join time.
			if ev.HasCapacity() {
				if entry, ok := ev.PopWaitlist(); ok {
					if aerr := ev.AddAttendee(entry.PrincipalID, now); aerr != nil {
						return aerr
					}
					result.PromotedPrincipalID = entry.PrincipalID
				}
			}
			return nil
		}
		if ev.RemoveFromWaitlist(principal.ID) {
			return nil
		}
		return domain.ErrNotRegistered
	})
	if err != nil {
		return nil, err
	}

	if result.PromotedPrincipalID != "" && s.notifier != nil {
		// Fire-and-forget: a failed notification never rolls back the
		// registration mutation.
		if nerr := s.notifier.NotifyPromoted(ctx, result.PromotedPrincipalID, ev); nerr != nil {
			s.logger.Warn("promotion notification failed",
				"event_id", ev.ID,
				"principal_id", result.PromotedPrincipalID,
				"err", nerr,
			)
		}
	}
	return result, nil
}

func (s *registrationService) CheckIn(ctx context.Context, principal domain.Principal, eventID string, now time.Time) (*domain.CheckInResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var result *domain.CheckInResult
	_, err := mutateEvent(ctx, s.store, eventID, now, func(ev *domain.Event) error {
		if ev.Status.Terminal() {
			return domain.ErrEventNotModifiable
		}
		a, ok := ev.FindAttendee(principal.ID)
		if !ok {
			return domain.ErrNotRegistered
		}
		if a.Status == domain.AttendeeAttended {
			return domain.ErrAlreadyCheckedIn
		}
		// Window opens checkInLeadTime before the scheduled start, boundary
		// inclusive, and closes at the scheduled end.
		if now.Before(ev.Schedule.StartsAt.Add(-checkInLeadTime)) || now.After(ev.Schedule.EndsAt) {
			return domain.ErrCheckInNotOpen
		}
		checkedIn := now
		a.Status = domain.AttendeeAttended
		a.CheckedInAt = &checkedIn
		result = &domain.CheckInResult{EventID: ev.ID, PrincipalID: principal.ID, CheckedInAt: now}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *registrationService) SubmitFeedback(ctx context.Context, principal domain.Principal, eventID string, rating int, comment string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	now := s.clock.Now()
	_, err := mutateEvent(ctx, s.store, eventID, now, func(ev *domain.Event) error {
		if ev.Status == domain.EventCancelled {
			return domain.ErrEventNotModifiable
		}
		a, ok := ev.FindAttendee(principal.ID)
		if !ok {
			return domain.ErrNotRegistered
		}
		if a.Status != domain.AttendeeAttended {
			return domain.ErrNotAttended
		}
		if rating < 1 || rating > 5 {
			return domain.ErrInvalidRating
		}
		a.Feedback = &domain.Feedback{Rating: rating, Comment: comment}
		return nil
	})
	return err
}
