package relational

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/medconnect/graphd/internal/types"
)

// Person is one relational person row.
type Person struct {
	ID        string
	FullName  string
	City      string
	State     string
	CreatedAt time.Time
}

// PersonDAO provides database access for people.
type PersonDAO struct {
	db *DB
}

// NewPersonDAO creates a new PersonDAO instance.
func NewPersonDAO(db *DB) *PersonDAO {
	return &PersonDAO{db: db}
}

// Create inserts a new person.
func (dao *PersonDAO) Create(ctx context.Context, p Person) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := dao.db.conn.ExecContext(ctx, `
		INSERT INTO people (id, full_name, city, state, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.FullName, p.City, p.State, p.CreatedAt)
	if err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "inserting person", err)
	}
	return nil
}

// Get retrieves a person by id.
func (dao *PersonDAO) Get(ctx context.Context, id string) (*Person, error) {
	var p Person
	err := dao.db.conn.QueryRowContext(ctx, `
		SELECT id, full_name, city, state, created_at
		FROM people WHERE id = ?`, id).
		Scan(&p.ID, &p.FullName, &p.City, &p.State, &p.CreatedAt)
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "loading person", err)
	}
	return &p, nil
}

// All returns every person, ordered by creation time.
func (dao *PersonDAO) All(ctx context.Context) ([]Person, error) {
	rows, err := dao.db.conn.QueryContext(ctx, `
		SELECT id, full_name, city, state, created_at
		FROM people ORDER BY created_at`)
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "listing people", err)
	}
	defer rows.Close()
	return scanPeople(rows)
}

// RecentExcluding returns the most recently created people that are not in the
// exclude set, newest first.
func (dao *PersonDAO) RecentExcluding(ctx context.Context, exclude []string, limit int) ([]Person, error) {
	query := `
		SELECT id, full_name, city, state, created_at
		FROM people`
	args := make([]any, 0, len(exclude)+1)
	if len(exclude) > 0 {
		query += " WHERE id NOT IN (" + placeholders(len(exclude)) + ")"
		for _, id := range exclude {
			args = append(args, id)
		}
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := dao.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "listing recent people", err)
	}
	defer rows.Close()
	return scanPeople(rows)
}

func scanPeople(rows *sql.Rows) ([]Person, error) {
	var out []Person
	for rows.Next() {
		var p Person
		if err := rows.Scan(&p.ID, &p.FullName, &p.City, &p.State, &p.CreatedAt); err != nil {
			return nil, types.WrapError(types.DB_QUERY_FAILED, "scanning person row", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "iterating person rows", err)
	}
	return out, nil
}

// placeholders returns "?, ?, ..." with n placeholders.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
