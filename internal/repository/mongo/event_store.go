// Package mongo persists event aggregates as single documents, matching the
// one-document-per-event layout the registration engine's atomicity contract
// assumes. Optimistic concurrency uses a version field checked in the
// replace filter.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"communityhub/internal/domain"
)

type eventStore struct {
	events *mongo.Collection
}

// NewEventStore returns an EventStore over the "events" collection of db.
func NewEventStore(db *mongo.Database) domain.EventStore {
	return &eventStore{events: db.Collection("events")}
}

func mapErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return fmt.Errorf("%s: %w", op, domain.ErrStoreUnavailable)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *eventStore) Create(ctx context.Context, ev *domain.Event) error {
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	ev.Version = 1
	if _, err := s.events.InsertOne(ctx, ev); err != nil {
		return mapErr("insert event", err)
	}
	return nil
}

func (s *eventStore) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	var ev domain.Event
	err := s.events.FindOne(ctx, bson.M{"_id": id}).Decode(&ev)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, mapErr("get event", err)
	}
	normalize(&ev)
	return &ev, nil
}

// Update replaces the document only when the stored version still matches
// expectedVersion. A zero match count on an existing document means another
// writer got there first.
func (s *eventStore) Update(ctx context.Context, ev *domain.Event, expectedVersion int64) error {
	next := ev.Clone()
	next.Version = expectedVersion + 1

	res, err := s.events.ReplaceOne(ctx, bson.M{"_id": ev.ID, "version": expectedVersion}, next)
	if err != nil {
		return mapErr("update event", err)
	}
	if res.MatchedCount == 0 {
		count, err := s.events.CountDocuments(ctx, bson.M{"_id": ev.ID})
		if err != nil {
			return mapErr("update event", err)
		}
		if count == 0 {
			return domain.ErrNotFound
		}
		return domain.ErrVersionConflict
	}
	ev.Version = next.Version
	return nil
}

func (s *eventStore) List(ctx context.Context, filter domain.EventFilter, p domain.PaginationParams) ([]*domain.Event, int, error) {
	query := bson.M{}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			statuses[i] = string(st)
		}
		query["status"] = bson.M{"$in": statuses}
	}
	if filter.Track != "" {
		query["track"] = string(filter.Track)
	}
	if filter.StartsAfter != nil {
		query["schedule.starts_at"] = bson.M{"$gt": *filter.StartsAfter}
	}
	if filter.AttendeeID != "" {
		query["attendees"] = bson.M{"$elemMatch": bson.M{"principal_id": filter.AttendeeID}}
	}

	total, err := s.events.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, mapErr("count events", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "schedule.starts_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(p.Offset())).
		SetLimit(int64(p.PageSize))
	cur, err := s.events.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, mapErr("list events", err)
	}
	defer cur.Close(ctx)

	events := []*domain.Event{}
	for cur.Next(ctx) {
		var ev domain.Event
		if err := cur.Decode(&ev); err != nil {
			return nil, 0, mapErr("decode event", err)
		}
		normalize(&ev)
		events = append(events, &ev)
	}
	if err := cur.Err(); err != nil {
		return nil, 0, mapErr("list events", err)
	}
	return events, int(total), nil
}

// normalize replaces nil collections decoded from bson with empty slices so
// the aggregate's owned lists are always non-nil.
func normalize(ev *domain.Event) {
	if ev.Attendees == nil {
		ev.Attendees = []domain.Attendee{}
	}
	if ev.Waitlist == nil {
		ev.Waitlist = []domain.WaitlistEntry{}
	}
}
