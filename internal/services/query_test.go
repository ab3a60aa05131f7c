package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"communityhub/internal/domain"
	"communityhub/internal/repository/memory"
)

// seedCatalog fills the store with a mix of statuses, tracks, and start
// times around testStart.
func seedCatalog(t *testing.T, store domain.EventStore) map[string]string {
	t.Helper()
	ids := make(map[string]string)
	add := func(key, title string, track domain.Track, status domain.EventStatus, startsIn time.Duration) {
		ev := domain.NewEvent(
			title, "owner-1", track, nil,
			domain.Window{OpensAt: testStart.Add(-24 * time.Hour), ClosesAt: testStart.Add(startsIn)},
			domain.Schedule{StartsAt: testStart.Add(startsIn), EndsAt: testStart.Add(startsIn + time.Hour)},
			false,
			testStart.Add(-48*time.Hour),
		)
		ev.Status = status
		require.NoError(t, store.Create(context.Background(), ev))
		ids[key] = ev.ID
	}

	add("upcoming-all", "Town Hall", domain.TrackAll, domain.EventPublished, 2*time.Hour)
	add("upcoming-academy", "Study Group", domain.TrackAcademy, domain.EventPublished, 4*time.Hour)
	add("live-all", "Office Hours", domain.TrackAll, domain.EventLive, time.Hour)
	add("past-all", "Last Week", domain.TrackAll, domain.EventCompleted, -7*24*time.Hour)
	add("draft-all", "Unannounced", domain.TrackAll, domain.EventDraft, 3*time.Hour)
	add("cancelled-all", "Called Off", domain.TrackAll, domain.EventCancelled, 5*time.Hour)
	return ids
}

func TestGetEvent(t *testing.T) {
	store := memory.NewEventStore()
	ids := seedCatalog(t, store)
	svc := NewEventQueryService(store, 2*time.Second)
	ctx := context.Background()

	t.Run("published event visible to members", func(t *testing.T) {
		ev, err := svc.GetEvent(ctx, member("alice"), ids["upcoming-all"])
		require.NoError(t, err)
		assert.Equal(t, "Town Hall", ev.Title)
	})

	t.Run("draft hidden from non-owner", func(t *testing.T) {
		_, err := svc.GetEvent(ctx, member("alice"), ids["draft-all"])
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("draft visible to owner and staff", func(t *testing.T) {
		_, err := svc.GetEvent(ctx, member("owner-1"), ids["draft-all"])
		assert.NoError(t, err)

		mod := domain.Principal{ID: "mod", Role: domain.RoleModerator, Subscription: domain.TrackAll}
		_, err = svc.GetEvent(ctx, mod, ids["draft-all"])
		assert.NoError(t, err)
	})

	t.Run("track-gated event hidden from other subscriptions", func(t *testing.T) {
		p := domain.Principal{ID: "alice", Role: domain.RoleMember, Subscription: domain.TrackBuilder}
		_, err := svc.GetEvent(ctx, p, ids["upcoming-academy"])
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.GetEvent(ctx, member("alice"), "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestListUpcoming(t *testing.T) {
	store := memory.NewEventStore()
	seedCatalog(t, store)
	svc := NewEventQueryService(store, 2*time.Second)
	ctx := context.Background()
	page := domain.PaginationParams{Page: 1, PageSize: 50}

	t.Run("published and live future events, start order", func(t *testing.T) {
		res, err := svc.ListUpcoming(ctx, member("alice"), testStart, page)
		require.NoError(t, err)
		titles := make([]string, 0, len(res.Events))
		for _, ev := range res.Events {
			titles = append(titles, ev.Title)
		}
		assert.Equal(t, []string{"Office Hours", "Town Hall", "Study Group"}, titles)
	})

	t.Run("track gate filters per caller", func(t *testing.T) {
		p := domain.Principal{ID: "bob", Role: domain.RoleMember, Subscription: domain.TrackBuilder}
		res, err := svc.ListUpcoming(ctx, p, testStart, page)
		require.NoError(t, err)
		for _, ev := range res.Events {
			assert.NotEqual(t, "Study Group", ev.Title)
		}
	})

	t.Run("nothing upcoming far in the future", func(t *testing.T) {
		res, err := svc.ListUpcoming(ctx, member("alice"), testStart.Add(365*24*time.Hour), page)
		require.NoError(t, err)
		assert.Empty(t, res.Events)
	})
}

func TestListByTrack(t *testing.T) {
	store := memory.NewEventStore()
	seedCatalog(t, store)
	svc := NewEventQueryService(store, 2*time.Second)
	ctx := context.Background()
	page := domain.PaginationParams{Page: 1, PageSize: 50}

	t.Run("includes completed, excludes draft and cancelled", func(t *testing.T) {
		res, err := svc.ListByTrack(ctx, member("alice"), domain.TrackAll, page)
		require.NoError(t, err)
		titles := make([]string, 0, len(res.Events))
		for _, ev := range res.Events {
			titles = append(titles, ev.Title)
		}
		assert.ElementsMatch(t, []string{"Town Hall", "Office Hours", "Last Week"}, titles)
	})

	t.Run("unknown track", func(t *testing.T) {
		_, err := svc.ListByTrack(ctx, member("alice"), "vip", page)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestListMyRegistrations(t *testing.T) {
	store := memory.NewEventStore()
	ids := seedCatalog(t, store)
	query := NewEventQueryService(store, 2*time.Second)
	reg := newTestEngine(store, nil)
	ctx := context.Background()

	_, err := reg.Register(ctx, member("alice"), ids["upcoming-all"], testStart)
	require.NoError(t, err)
	_, err = reg.Register(ctx, member("alice"), ids["upcoming-academy"], testStart)
	require.NoError(t, err)
	_, err = reg.Register(ctx, member("bob"), ids["upcoming-all"], testStart)
	require.NoError(t, err)

	regs, err := query.ListMyRegistrations(ctx, member("alice"))
	require.NoError(t, err)
	require.Len(t, regs, 2)
	for _, r := range regs {
		assert.Equal(t, "alice", r.Attendee.PrincipalID)
		assert.Equal(t, domain.AttendeeRegistered, r.Attendee.Status)
	}

	regs, err = query.ListMyRegistrations(ctx, member("carol"))
	require.NoError(t, err)
	assert.Empty(t, regs)
}
