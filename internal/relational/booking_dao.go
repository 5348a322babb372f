package relational

import (
	"context"
	"time"

	"github.com/medconnect/graphd/internal/types"
)

// Booking statuses.
const (
	BookingPending   = "PENDING"
	BookingConfirmed = "CONFIRMED"
	BookingCancelled = "CANCELLED"
)

// Booking is one scheduled appointment row.
type Booking struct {
	ID          string
	PersonID    string
	ScheduledAt time.Time
	Status      string
}

// BookingDAO provides database access for bookings.
type BookingDAO struct {
	db *DB
}

// NewBookingDAO creates a new BookingDAO instance.
func NewBookingDAO(db *DB) *BookingDAO {
	return &BookingDAO{db: db}
}

// Create inserts a new booking.
func (dao *BookingDAO) Create(ctx context.Context, b Booking) error {
	_, err := dao.db.conn.ExecContext(ctx, `
		INSERT INTO bookings (id, person_id, scheduled_at, status)
		VALUES (?, ?, ?, ?)`,
		b.ID, b.PersonID, b.ScheduledAt.UTC(), b.Status)
	if err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "inserting booking", err)
	}
	return nil
}

// BookedTimes returns the confirmed and pending booking timestamps of the
// given people on one calendar day, keyed by person id. Cancelled bookings do
// not block a slot.
func (dao *BookingDAO) BookedTimes(ctx context.Context, personIDs []string, day time.Time) (map[string][]time.Time, error) {
	if len(personIDs) == 0 {
		return map[string][]time.Time{}, nil
	}

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	query := `
		SELECT person_id, scheduled_at
		FROM bookings
		WHERE person_id IN (` + placeholders(len(personIDs)) + `)
		  AND scheduled_at >= ? AND scheduled_at < ?
		  AND status IN (?, ?)`

	args := make([]any, 0, len(personIDs)+4)
	for _, id := range personIDs {
		args = append(args, id)
	}
	args = append(args, dayStart, dayEnd, BookingConfirmed, BookingPending)

	rows, err := dao.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "listing bookings", err)
	}
	defer rows.Close()

	out := make(map[string][]time.Time)
	for rows.Next() {
		var personID string
		var at time.Time
		if err := rows.Scan(&personID, &at); err != nil {
			return nil, types.WrapError(types.DB_QUERY_FAILED, "scanning booking row", err)
		}
		out[personID] = append(out[personID], at.UTC())
	}
	if err := rows.Err(); err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "iterating booking rows", err)
	}
	return out, nil
}
