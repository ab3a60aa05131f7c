package domain

// EventAnalytics holds derived per-event metrics. Registrations is kept in
// lockstep with the attendee list after every mutation; AttendanceRate and
// AverageRating are only meaningful once the event is completed and stay
// zero before that.
// swagger:model EventAnalytics
type EventAnalytics struct {
	Registrations  int     `json:"registrations" bson:"registrations"`
	AttendanceRate float64 `json:"attendance_rate" bson:"attendance_rate"`
	AverageRating  float64 `json:"average_rating" bson:"average_rating"`
}
