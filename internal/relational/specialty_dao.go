package relational

import (
	"context"

	"github.com/medconnect/graphd/internal/types"
)

// SpecialtyDAO provides database access for specialties and their
// assignments.
type SpecialtyDAO struct {
	db *DB
}

// NewSpecialtyDAO creates a new SpecialtyDAO instance.
func NewSpecialtyDAO(db *DB) *SpecialtyDAO {
	return &SpecialtyDAO{db: db}
}

// Create inserts a specialty. Existing rows are left untouched.
func (dao *SpecialtyDAO) Create(ctx context.Context, id, name string) error {
	_, err := dao.db.conn.ExecContext(ctx,
		"INSERT OR IGNORE INTO specialties (id, name) VALUES (?, ?)", id, name)
	if err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "inserting specialty", err)
	}
	return nil
}

// Assign links a person to a specialty.
func (dao *SpecialtyDAO) Assign(ctx context.Context, personID, specialtyID string, isPrimary bool) error {
	primary := 0
	if isPrimary {
		primary = 1
	}
	_, err := dao.db.conn.ExecContext(ctx, `
		INSERT OR REPLACE INTO person_specialties (person_id, specialty_id, is_primary)
		VALUES (?, ?, ?)`, personID, specialtyID, primary)
	if err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "assigning specialty", err)
	}
	return nil
}
