// Package access decides whether a principal may register for an event.
//
// Rules:
//   - Registration requires the event to be published.
//   - Registration must happen inside the event's registration window.
//   - Track-gated events admit principals whose subscription matches the
//     track; the all-access tier, admins, and moderators bypass the gate.
//
// Decisions are pure functions of their inputs: no I/O, no clock reads.
package access

import (
	"time"

	"communityhub/internal/domain"
)

// DenyReason explains a negative decision.
type DenyReason string

const (
	DenyEventNotPublished         DenyReason = "event_not_published"
	DenyOutsideRegistrationWindow DenyReason = "outside_registration_window"
	DenyTrackRestricted           DenyReason = "track_restricted"
)

// Decision is the result of a policy check.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

func allow() Decision { return Decision{Allowed: true} }
func deny(r DenyReason) Decision { return Decision{Reason: r} }

// CanRegister reports whether the principal may register for the event at
// the given instant. Window bounds are inclusive.
func CanRegister(p domain.Principal, ev *domain.Event, now time.Time) Decision {
	if ev.Status != domain.EventPublished {
		return deny(DenyEventNotPublished)
	}
	if !ev.RegistrationWindow.Contains(now) {
		return deny(DenyOutsideRegistrationWindow)
	}
	if !trackAdmits(p, ev.Track) {
		return deny(DenyTrackRestricted)
	}
	return allow()
}

// CanView reports whether the principal may see the event in listings and
// detail reads. Draft events are visible to their owner and staff only;
// track gating follows the same rule as registration.
func CanView(p domain.Principal, ev *domain.Event) bool {
	if ev.Status == domain.EventDraft && ev.OwnerID != p.ID && !p.IsStaff() {
		return false
	}
	return trackAdmits(p, ev.Track)
}

// trackAdmits applies the subscription gate. Events on the "all" track admit
// everyone; otherwise the subscription must match, with staff and all-access
// subscribers exempt.
func trackAdmits(p domain.Principal, track domain.Track) bool {
	if track == domain.TrackAll {
		return true
	}
	return p.Subscription == track || p.Subscription == domain.TrackAll || p.IsStaff()
}
