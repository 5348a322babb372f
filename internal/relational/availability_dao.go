package relational

import (
	"context"

	"github.com/medconnect/graphd/internal/types"
)

// AvailabilityWindow is one recurring weekly availability window at a
// workplace. Start and End are wall-clock times formatted "HH:MM"; DayOfWeek
// follows time.Weekday (0 = Sunday).
type AvailabilityWindow struct {
	ID              string
	PersonID        string
	WorkplaceID     string
	DayOfWeek       int
	Start           string
	End             string
	SlotDurationMin int
}

// AvailabilityDAO provides database access for availability windows.
type AvailabilityDAO struct {
	db *DB
}

// NewAvailabilityDAO creates a new AvailabilityDAO instance.
func NewAvailabilityDAO(db *DB) *AvailabilityDAO {
	return &AvailabilityDAO{db: db}
}

// Create inserts a new availability window.
func (dao *AvailabilityDAO) Create(ctx context.Context, w AvailabilityWindow) error {
	if w.SlotDurationMin <= 0 {
		w.SlotDurationMin = 30
	}
	_, err := dao.db.conn.ExecContext(ctx, `
		INSERT INTO availability_windows
			(id, person_id, workplace_id, day_of_week, start_time, end_time, slot_duration_min, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1)`,
		w.ID, w.PersonID, w.WorkplaceID, w.DayOfWeek, w.Start, w.End, w.SlotDurationMin)
	if err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "inserting availability window", err)
	}
	return nil
}

// Deactivate marks a window inactive without deleting its history.
func (dao *AvailabilityDAO) Deactivate(ctx context.Context, id string) error {
	_, err := dao.db.conn.ExecContext(ctx,
		"UPDATE availability_windows SET is_active = 0 WHERE id = ?", id)
	if err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "deactivating availability window", err)
	}
	return nil
}

// ActiveWindows returns the active windows of the given people for one day of
// the week, ordered by person then start time.
func (dao *AvailabilityDAO) ActiveWindows(ctx context.Context, personIDs []string, dayOfWeek int) ([]AvailabilityWindow, error) {
	if len(personIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, person_id, workplace_id, day_of_week, start_time, end_time, slot_duration_min
		FROM availability_windows
		WHERE person_id IN (` + placeholders(len(personIDs)) + `)
		  AND day_of_week = ?
		  AND is_active = 1
		ORDER BY person_id, start_time`

	args := make([]any, 0, len(personIDs)+1)
	for _, id := range personIDs {
		args = append(args, id)
	}
	args = append(args, dayOfWeek)

	rows, err := dao.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "listing availability windows", err)
	}
	defer rows.Close()

	var out []AvailabilityWindow
	for rows.Next() {
		var w AvailabilityWindow
		if err := rows.Scan(&w.ID, &w.PersonID, &w.WorkplaceID, &w.DayOfWeek,
			&w.Start, &w.End, &w.SlotDurationMin); err != nil {
			return nil, types.WrapError(types.DB_QUERY_FAILED, "scanning availability row", err)
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "iterating availability rows", err)
	}
	return out, nil
}
