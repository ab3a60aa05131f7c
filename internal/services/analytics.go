package services

import "communityhub/internal/domain"

// RecomputeAnalytics recalculates the event's derived metrics from its
// current attendee list. It is idempotent and must be called after every
// attendee mutation so analytics.registrations never drifts from the list.
//
// AttendanceRate and AverageRating are only computed once the event is
// completed; before that they keep their prior (zero) values.
func RecomputeAnalytics(ev *domain.Event) {
	ev.Analytics.Registrations = len(ev.Attendees)

	if ev.Status != domain.EventCompleted {
		return
	}

	attended := 0
	ratingSum := 0
	rated := 0
	for i := range ev.Attendees {
		a := &ev.Attendees[i]
		if a.Status == domain.AttendeeAttended {
			attended++
		}
		if a.Feedback != nil {
			ratingSum += a.Feedback.Rating
			rated++
		}
	}

	if ev.Analytics.Registrations == 0 {
		ev.Analytics.AttendanceRate = 0
	} else {
		ev.Analytics.AttendanceRate = float64(attended) / float64(ev.Analytics.Registrations)
	}
	if rated == 0 {
		ev.Analytics.AverageRating = 0
	} else {
		ev.Analytics.AverageRating = float64(ratingSum) / float64(rated)
	}
}
