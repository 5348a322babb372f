package relational

import (
	"context"
	"time"

	"github.com/medconnect/graphd/internal/types"
)

// Affiliation statuses.
const (
	AffiliationPending  = "PENDING"
	AffiliationAccepted = "ACCEPTED"
	AffiliationRejected = "REJECTED"
)

// Affiliation is one affiliation request row. From/To is the request
// direction; an accepted affiliation is symmetric for graph purposes.
type Affiliation struct {
	ID        string
	FromID    string
	ToID      string
	Status    string
	CreatedAt time.Time
}

// AffiliationDAO provides database access for affiliation requests.
type AffiliationDAO struct {
	db *DB
}

// NewAffiliationDAO creates a new AffiliationDAO instance.
func NewAffiliationDAO(db *DB) *AffiliationDAO {
	return &AffiliationDAO{db: db}
}

// Create inserts a new affiliation request.
func (dao *AffiliationDAO) Create(ctx context.Context, a Affiliation) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	_, err := dao.db.conn.ExecContext(ctx, `
		INSERT INTO affiliations (id, from_id, to_id, status, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.FromID, a.ToID, a.Status, a.CreatedAt)
	if err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "inserting affiliation", err)
	}
	return nil
}

// ConnectedIDs returns the ids of everyone the person has an accepted
// affiliation with, in either direction.
func (dao *AffiliationDAO) ConnectedIDs(ctx context.Context, personID string) ([]string, error) {
	return dao.counterpartIDs(ctx, personID, AffiliationAccepted)
}

// PendingIDs returns the ids of everyone with an open request to or from the
// person.
func (dao *AffiliationDAO) PendingIDs(ctx context.Context, personID string) ([]string, error) {
	return dao.counterpartIDs(ctx, personID, AffiliationPending)
}

func (dao *AffiliationDAO) counterpartIDs(ctx context.Context, personID, status string) ([]string, error) {
	rows, err := dao.db.conn.QueryContext(ctx, `
		SELECT CASE WHEN from_id = ? THEN to_id ELSE from_id END
		FROM affiliations
		WHERE (from_id = ? OR to_id = ?) AND status = ?`,
		personID, personID, personID, status)
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "listing affiliation counterparts", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, types.WrapError(types.DB_QUERY_FAILED, "scanning affiliation row", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "iterating affiliation rows", err)
	}
	return out, nil
}

// Accepted returns every accepted affiliation pair.
func (dao *AffiliationDAO) Accepted(ctx context.Context) ([]Affiliation, error) {
	rows, err := dao.db.conn.QueryContext(ctx, `
		SELECT id, from_id, to_id, status, created_at
		FROM affiliations WHERE status = ? ORDER BY created_at`,
		AffiliationAccepted)
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "listing accepted affiliations", err)
	}
	defer rows.Close()

	var out []Affiliation
	for rows.Next() {
		var a Affiliation
		if err := rows.Scan(&a.ID, &a.FromID, &a.ToID, &a.Status, &a.CreatedAt); err != nil {
			return nil, types.WrapError(types.DB_QUERY_FAILED, "scanning affiliation row", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "iterating affiliation rows", err)
	}
	return out, nil
}
