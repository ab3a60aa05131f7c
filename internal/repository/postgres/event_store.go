package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"communityhub/internal/domain"
)

// eventStore persists each event aggregate as a single row: scalar fields as
// columns, the owned attendee/waitlist/analytics collections as JSONB, plus
// a version column for compare-and-swap updates.
type eventStore struct {
	DB *sql.DB
}

// NewEventStore returns an EventStore backed by PostgreSQL.
func NewEventStore(db *sql.DB) domain.EventStore {
	return &eventStore{DB: db}
}

const eventColumns = `id, title, owner_id, track, capacity,
	reg_opens_at, reg_closes_at, starts_at, ends_at,
	waitlist_enabled, status, attendees, waitlist, analytics,
	version, created_at, updated_at`

// mapErr translates driver-level failures into the transient
// ErrStoreUnavailable kind so callers can distinguish a dead database from a
// request that will never succeed.
func mapErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || errors.Is(err, driver.ErrBadConn) {
		return fmt.Errorf("%s: %w", op, domain.ErrStoreUnavailable)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && strings.HasPrefix(string(pqErr.Code), "08") {
		// Class 08: connection exceptions.
		return fmt.Errorf("%s: %w", op, domain.ErrStoreUnavailable)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *eventStore) Create(ctx context.Context, ev *domain.Event) error {
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	ev.Version = 1

	attendees, waitlist, analytics, err := marshalCollections(ev)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err = s.DB.ExecContext(ctx, query,
		ev.ID, ev.Title, ev.OwnerID, string(ev.Track), capacityArg(ev),
		ev.RegistrationWindow.OpensAt, ev.RegistrationWindow.ClosesAt,
		ev.Schedule.StartsAt, ev.Schedule.EndsAt,
		ev.WaitlistEnabled, string(ev.Status), attendees, waitlist, analytics,
		ev.Version, ev.CreatedAt, ev.UpdatedAt,
	)
	if err != nil {
		return mapErr("insert event", err)
	}
	return nil
}

func (s *eventStore) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)
	ev, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, mapErr("get event", err)
	}
	return ev, nil
}

// Update replaces the whole aggregate row iff the stored version still
// matches expectedVersion. Zero rows affected with an existing id means a
// concurrent writer won; the caller reloads and retries.
func (s *eventStore) Update(ctx context.Context, ev *domain.Event, expectedVersion int64) error {
	attendees, waitlist, analytics, err := marshalCollections(ev)
	if err != nil {
		return err
	}

	query := `
		UPDATE events
		SET title = $3, owner_id = $4, track = $5, capacity = $6,
			reg_opens_at = $7, reg_closes_at = $8, starts_at = $9, ends_at = $10,
			waitlist_enabled = $11, status = $12,
			attendees = $13, waitlist = $14, analytics = $15,
			version = $2 + 1, updated_at = $16
		WHERE id = $1 AND version = $2
	`
	res, err := s.DB.ExecContext(ctx, query,
		ev.ID, expectedVersion,
		ev.Title, ev.OwnerID, string(ev.Track), capacityArg(ev),
		ev.RegistrationWindow.OpensAt, ev.RegistrationWindow.ClosesAt,
		ev.Schedule.StartsAt, ev.Schedule.EndsAt,
		ev.WaitlistEnabled, string(ev.Status),
		attendees, waitlist, analytics,
		ev.UpdatedAt,
	)
	if err != nil {
		return mapErr("update event", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return mapErr("update event", err)
	}
	if affected == 0 {
		var exists bool
		if err := s.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, ev.ID).Scan(&exists); err != nil {
			return mapErr("update event", err)
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrVersionConflict
	}
	ev.Version = expectedVersion + 1
	return nil
}

func (s *eventStore) List(ctx context.Context, filter domain.EventFilter, p domain.PaginationParams) ([]*domain.Event, int, error) {
	where, args := buildWhere(filter)

	countQuery := `SELECT COUNT(*) FROM events` + where
	var total int
	if err := s.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, mapErr("count events", err)
	}

	query := fmt.Sprintf(`SELECT `+eventColumns+` FROM events%s ORDER BY starts_at, id LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	args = append(args, p.PageSize, p.Offset())

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, mapErr("list events", err)
	}
	defer rows.Close()

	events := []*domain.Event{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, 0, mapErr("scan event", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapErr("list events", err)
	}
	return events, total, nil
}

func buildWhere(filter domain.EventFilter) (string, []any) {
	var conds []string
	var args []any

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			statuses[i] = string(st)
		}
		args = append(args, pq.Array(statuses))
		conds = append(conds, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	if filter.Track != "" {
		args = append(args, string(filter.Track))
		conds = append(conds, fmt.Sprintf("track = $%d", len(args)))
	}
	if filter.StartsAfter != nil {
		args = append(args, *filter.StartsAfter)
		conds = append(conds, fmt.Sprintf("starts_at > $%d", len(args)))
	}
	if filter.AttendeeID != "" {
		args = append(args, fmt.Sprintf(`[{"principal_id": %q}]`, filter.AttendeeID))
		conds = append(conds, fmt.Sprintf("attendees @> $%d::jsonb", len(args)))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func capacityArg(ev *domain.Event) any {
	if ev.Capacity == nil {
		return nil
	}
	return *ev.Capacity
}

func marshalCollections(ev *domain.Event) ([]byte, []byte, []byte, error) {
	attendees, err := json.Marshal(ev.Attendees)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal attendees: %w", err)
	}
	waitlist, err := json.Marshal(ev.Waitlist)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal waitlist: %w", err)
	}
	analytics, err := json.Marshal(ev.Analytics)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal analytics: %w", err)
	}
	return attendees, waitlist, analytics, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	ev := &domain.Event{}
	var (
		track, status                  string
		capacity                       sql.NullInt64
		attendees, waitlist, analytics []byte
	)
	err := row.Scan(
		&ev.ID, &ev.Title, &ev.OwnerID, &track, &capacity,
		&ev.RegistrationWindow.OpensAt, &ev.RegistrationWindow.ClosesAt,
		&ev.Schedule.StartsAt, &ev.Schedule.EndsAt,
		&ev.WaitlistEnabled, &status, &attendees, &waitlist, &analytics,
		&ev.Version, &ev.CreatedAt, &ev.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	ev.Track = domain.Track(track)
	ev.Status = domain.EventStatus(status)
	if capacity.Valid {
		c := int(capacity.Int64)
		ev.Capacity = &c
	}
	if err := json.Unmarshal(attendees, &ev.Attendees); err != nil {
		return nil, fmt.Errorf("unmarshal attendees: %w", err)
	}
	if err := json.Unmarshal(waitlist, &ev.Waitlist); err != nil {
		return nil, fmt.Errorf("unmarshal waitlist: %w", err)
	}
	if err := json.Unmarshal(analytics, &ev.Analytics); err != nil {
		return nil, fmt.Errorf("unmarshal analytics: %w", err)
	}
	if ev.Attendees == nil {
		ev.Attendees = []domain.Attendee{}
	}
	if ev.Waitlist == nil {
		ev.Waitlist = []domain.WaitlistEntry{}
	}
	return ev, nil
}
