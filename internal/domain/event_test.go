package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestEvent_AddAttendee(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("appends until capacity", func(t *testing.T) {
		ev := &Event{ID: "ev-1", Capacity: intPtr(2)}
		require.NoError(t, ev.AddAttendee("a", now))
		require.NoError(t, ev.AddAttendee("b", now))
		assert.ErrorIs(t, ev.AddAttendee("c", now), ErrEventFull)
		assert.Len(t, ev.Attendees, 2)
	})

	t.Run("unlimited when capacity unset", func(t *testing.T) {
		ev := &Event{ID: "ev-1"}
		for i := 0; i < 50; i++ {
			require.NoError(t, ev.AddAttendee(string(rune('a'+i)), now))
		}
		assert.Len(t, ev.Attendees, 50)
	})

	t.Run("rejects duplicate attendee", func(t *testing.T) {
		ev := &Event{ID: "ev-1"}
		require.NoError(t, ev.AddAttendee("a", now))
		assert.ErrorIs(t, ev.AddAttendee("a", now), ErrAlreadyRegistered)
	})

	t.Run("rejects waitlisted principal", func(t *testing.T) {
		ev := &Event{ID: "ev-1"}
		require.NoError(t, ev.JoinWaitlist("a", now))
		assert.ErrorIs(t, ev.AddAttendee("a", now), ErrAlreadyWaitlisted)
	})
}

func TestEvent_JoinWaitlist(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	ev := &Event{ID: "ev-1", Capacity: intPtr(1)}
	require.NoError(t, ev.AddAttendee("a", now))

	require.NoError(t, ev.JoinWaitlist("b", now))
	assert.ErrorIs(t, ev.JoinWaitlist("b", now), ErrAlreadyWaitlisted)
	assert.ErrorIs(t, ev.JoinWaitlist("a", now), ErrAlreadyRegistered)
}

func TestEvent_PopWaitlist(t *testing.T) {
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("empty waitlist", func(t *testing.T) {
		ev := &Event{ID: "ev-1"}
		_, ok := ev.PopWaitlist()
		assert.False(t, ok)
	})

	t.Run("earliest joined wins", func(t *testing.T) {
		ev := &Event{ID: "ev-1"}
		// Inserted out of join order on purpose.
		ev.Waitlist = []WaitlistEntry{
			{PrincipalID: "late", JoinedAt: base.Add(2 * time.Minute)},
			{PrincipalID: "early", JoinedAt: base},
			{PrincipalID: "middle", JoinedAt: base.Add(time.Minute)},
		}
		entry, ok := ev.PopWaitlist()
		require.True(t, ok)
		assert.Equal(t, "early", entry.PrincipalID)
		assert.Len(t, ev.Waitlist, 2)
	})

	t.Run("equal timestamps resolve by insertion order", func(t *testing.T) {
		ev := &Event{ID: "ev-1"}
		ev.Waitlist = []WaitlistEntry{
			{PrincipalID: "first", JoinedAt: base},
			{PrincipalID: "second", JoinedAt: base},
		}
		entry, ok := ev.PopWaitlist()
		require.True(t, ok)
		assert.Equal(t, "first", entry.PrincipalID)

		entry, ok = ev.PopWaitlist()
		require.True(t, ok)
		assert.Equal(t, "second", entry.PrincipalID)
	})
}

func TestEvent_Remove(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	ev := &Event{ID: "ev-1"}
	require.NoError(t, ev.AddAttendee("a", now))
	require.NoError(t, ev.AddAttendee("b", now))
	require.NoError(t, ev.JoinWaitlist("c", now))

	assert.True(t, ev.RemoveAttendee("a"))
	assert.False(t, ev.RemoveAttendee("a"))
	assert.False(t, ev.RemoveAttendee("c"))
	assert.Equal(t, "b", ev.Attendees[0].PrincipalID)

	assert.True(t, ev.RemoveFromWaitlist("c"))
	assert.False(t, ev.RemoveFromWaitlist("c"))
	assert.Empty(t, ev.Waitlist)
}

func TestEvent_CheckInvariants(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("valid aggregate", func(t *testing.T) {
		ev := &Event{ID: "ev-1", Capacity: intPtr(2)}
		require.NoError(t, ev.AddAttendee("a", now))
		ev.Analytics.Registrations = 1
		assert.NoError(t, ev.CheckInvariants())
	})

	t.Run("over capacity", func(t *testing.T) {
		ev := &Event{
			ID:       "ev-1",
			Capacity: intPtr(1),
			Attendees: []Attendee{
				{PrincipalID: "a"},
				{PrincipalID: "b"},
			},
			Analytics: EventAnalytics{Registrations: 2},
		}
		assert.Error(t, ev.CheckInvariants())
	})

	t.Run("double occupancy across lists", func(t *testing.T) {
		ev := &Event{
			ID:        "ev-1",
			Attendees: []Attendee{{PrincipalID: "a"}},
			Waitlist:  []WaitlistEntry{{PrincipalID: "a"}},
			Analytics: EventAnalytics{Registrations: 1},
		}
		assert.Error(t, ev.CheckInvariants())
	})

	t.Run("duplicate within attendees", func(t *testing.T) {
		ev := &Event{
			ID:        "ev-1",
			Attendees: []Attendee{{PrincipalID: "a"}, {PrincipalID: "a"}},
			Analytics: EventAnalytics{Registrations: 2},
		}
		assert.Error(t, ev.CheckInvariants())
	})

	t.Run("stale registration count", func(t *testing.T) {
		ev := &Event{
			ID:        "ev-1",
			Attendees: []Attendee{{PrincipalID: "a"}},
			Analytics: EventAnalytics{Registrations: 0},
		}
		assert.Error(t, ev.CheckInvariants())
	})
}

func TestEvent_Clone(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	ev := &Event{ID: "ev-1", Capacity: intPtr(3)}
	require.NoError(t, ev.AddAttendee("a", now))
	require.NoError(t, ev.JoinWaitlist("b", now))
	checkedIn := now.Add(time.Hour)
	ev.Attendees[0].CheckedInAt = &checkedIn
	ev.Attendees[0].Feedback = &Feedback{Rating: 4}

	cp := ev.Clone()
	cp.Attendees[0].Feedback.Rating = 1
	*cp.Attendees[0].CheckedInAt = now
	*cp.Capacity = 99
	cp.Waitlist[0].PrincipalID = "z"

	assert.Equal(t, 4, ev.Attendees[0].Feedback.Rating)
	assert.Equal(t, checkedIn, *ev.Attendees[0].CheckedInAt)
	assert.Equal(t, 3, *ev.Capacity)
	assert.Equal(t, "b", ev.Waitlist[0].PrincipalID)
}

func TestWindow_Contains(t *testing.T) {
	opens := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	closes := opens.Add(time.Hour)
	w := Window{OpensAt: opens, ClosesAt: closes}

	assert.True(t, w.Contains(opens))
	assert.True(t, w.Contains(closes))
	assert.True(t, w.Contains(opens.Add(30*time.Minute)))
	assert.False(t, w.Contains(opens.Add(-time.Nanosecond)))
	assert.False(t, w.Contains(closes.Add(time.Nanosecond)))
}
