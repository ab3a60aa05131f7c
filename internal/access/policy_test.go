package access

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"communityhub/internal/domain"
)

func testEvent(status domain.EventStatus, track domain.Track, opens, closes time.Time) *domain.Event {
	return &domain.Event{
		ID:                 "ev-1",
		Status:             status,
		Track:              track,
		RegistrationWindow: domain.Window{OpensAt: opens, ClosesAt: closes},
	}
}

func TestCanRegister(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	opens := now.Add(-time.Hour)
	closes := now.Add(time.Hour)

	member := domain.Principal{ID: "p-1", Role: domain.RoleMember, Subscription: domain.TrackAcademy}
	admin := domain.Principal{ID: "p-2", Role: domain.RoleAdmin}
	moderator := domain.Principal{ID: "p-3", Role: domain.RoleModerator}

	tests := []struct {
		name       string
		principal  domain.Principal
		event      *domain.Event
		at         time.Time
		wantAllow  bool
		wantReason DenyReason
	}{
		{
			name:      "published open window all track",
			principal: member,
			event:     testEvent(domain.EventPublished, domain.TrackAll, opens, closes),
			at:        now,
			wantAllow: true,
		},
		{
			name:       "draft event denied",
			principal:  member,
			event:      testEvent(domain.EventDraft, domain.TrackAll, opens, closes),
			at:         now,
			wantReason: DenyEventNotPublished,
		},
		{
			name:       "live event denied",
			principal:  member,
			event:      testEvent(domain.EventLive, domain.TrackAll, opens, closes),
			at:         now,
			wantReason: DenyEventNotPublished,
		},
		{
			name:       "cancelled event denied",
			principal:  member,
			event:      testEvent(domain.EventCancelled, domain.TrackAll, opens, closes),
			at:         now,
			wantReason: DenyEventNotPublished,
		},
		{
			name:       "before window opens",
			principal:  member,
			event:      testEvent(domain.EventPublished, domain.TrackAll, opens, closes),
			at:         opens.Add(-time.Second),
			wantReason: DenyOutsideRegistrationWindow,
		},
		{
			name:      "exactly at open is inside",
			principal: member,
			event:     testEvent(domain.EventPublished, domain.TrackAll, opens, closes),
			at:        opens,
			wantAllow: true,
		},
		{
			name:      "exactly at close is inside",
			principal: member,
			event:     testEvent(domain.EventPublished, domain.TrackAll, opens, closes),
			at:        closes,
			wantAllow: true,
		},
		{
			name:       "after window closes",
			principal:  member,
			event:      testEvent(domain.EventPublished, domain.TrackAll, opens, closes),
			at:         closes.Add(time.Second),
			wantReason: DenyOutsideRegistrationWindow,
		},
		{
			name:      "matching subscription on gated track",
			principal: member,
			event:     testEvent(domain.EventPublished, domain.TrackAcademy, opens, closes),
			at:        now,
			wantAllow: true,
		},
		{
			name:       "mismatched subscription on gated track",
			principal:  member,
			event:      testEvent(domain.EventPublished, domain.TrackBuilder, opens, closes),
			at:         now,
			wantReason: DenyTrackRestricted,
		},
		{
			name:      "all-access subscription bypasses track gate",
			principal: domain.Principal{ID: "p-4", Role: domain.RoleMember, Subscription: domain.TrackAll},
			event:     testEvent(domain.EventPublished, domain.TrackBuilder, opens, closes),
			at:        now,
			wantAllow: true,
		},
		{
			name:      "admin bypasses track gate",
			principal: admin,
			event:     testEvent(domain.EventPublished, domain.TrackLeadership, opens, closes),
			at:        now,
			wantAllow: true,
		},
		{
			name:      "moderator bypasses track gate",
			principal: moderator,
			event:     testEvent(domain.EventPublished, domain.TrackCoachLab, opens, closes),
			at:        now,
			wantAllow: true,
		},
		{
			name:       "status checked before window",
			principal:  member,
			event:      testEvent(domain.EventDraft, domain.TrackAll, opens, closes),
			at:         closes.Add(time.Hour),
			wantReason: DenyEventNotPublished,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanRegister(tt.principal, tt.event, tt.at)
			assert.Equal(t, tt.wantAllow, got.Allowed)
			if !tt.wantAllow {
				assert.Equal(t, tt.wantReason, got.Reason)
			}
		})
	}
}

func TestCanRegisterIsPure(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	ev := testEvent(domain.EventPublished, domain.TrackAcademy, now.Add(-time.Hour), now.Add(time.Hour))
	p := domain.Principal{ID: "p-1", Role: domain.RoleMember, Subscription: domain.TrackBuilder}

	first := CanRegister(p, ev, now)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, CanRegister(p, ev, now))
	}
}

func TestCanView(t *testing.T) {
	member := domain.Principal{ID: "p-1", Role: domain.RoleMember, Subscription: domain.TrackAcademy}
	owner := domain.Principal{ID: "owner-1", Role: domain.RoleMember, Subscription: domain.TrackAcademy}
	admin := domain.Principal{ID: "p-2", Role: domain.RoleAdmin}

	draft := &domain.Event{ID: "ev-1", Status: domain.EventDraft, Track: domain.TrackAll, OwnerID: "owner-1"}
	gated := &domain.Event{ID: "ev-2", Status: domain.EventPublished, Track: domain.TrackBuilder}

	assert.False(t, CanView(member, draft))
	assert.True(t, CanView(owner, draft))
	assert.True(t, CanView(admin, draft))
	assert.False(t, CanView(member, gated))
	assert.True(t, CanView(admin, gated))
}
