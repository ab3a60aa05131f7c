package domain

import "time"

// AttendeeStatus tracks an attendee through the event lifecycle.
type AttendeeStatus string

const (
	AttendeeRegistered AttendeeStatus = "registered"
	AttendeeAttended   AttendeeStatus = "attended"
	AttendeeNoShow     AttendeeStatus = "no_show"
)

// Feedback is an attendee's post-event rating. Rating is 1-5.
// swagger:model Feedback
type Feedback struct {
	Rating  int    `json:"rating" bson:"rating"`
	Comment string `json:"comment,omitempty" bson:"comment,omitempty"`
}

// Attendee is a confirmed registration. Attendees are owned by their Event
// and never outlive it; cancelled registrations are removed from the list
// rather than tombstoned, so len(Attendees) is always the occupied capacity.
// swagger:model Attendee
type Attendee struct {
	PrincipalID  string         `json:"principal_id" bson:"principal_id"`
	RegisteredAt time.Time      `json:"registered_at" bson:"registered_at"`
	Status       AttendeeStatus `json:"status" bson:"status"`
	CheckedInAt  *time.Time     `json:"checked_in_at,omitempty" bson:"checked_in_at,omitempty"`
	Feedback     *Feedback      `json:"feedback,omitempty" bson:"feedback,omitempty"`
}

// WaitlistEntry is a pending registration queued behind a full event.
// swagger:model WaitlistEntry
type WaitlistEntry struct {
	PrincipalID string    `json:"principal_id" bson:"principal_id"`
	JoinedAt    time.Time `json:"joined_at" bson:"joined_at"`
}
