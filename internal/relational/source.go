package relational

import (
	"context"

	gsync "github.com/medconnect/graphd/internal/sync"
	"github.com/medconnect/graphd/internal/types"
)

// SyncSource adapts the relational store to the synchronizer's resync
// contract.
type SyncSource struct {
	people       *PersonDAO
	affiliations *AffiliationDAO
	db           *DB
}

// NewSyncSource creates a resync source over the store.
func NewSyncSource(db *DB) *SyncSource {
	return &SyncSource{
		people:       NewPersonDAO(db),
		affiliations: NewAffiliationDAO(db),
		db:           db,
	}
}

// People returns every person row for replay.
func (s *SyncSource) People(ctx context.Context) ([]gsync.PersonRecord, error) {
	people, err := s.people.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]gsync.PersonRecord, 0, len(people))
	for _, p := range people {
		out = append(out, gsync.PersonRecord{
			ExtID:    p.ID,
			FullName: p.FullName,
			City:     p.City,
			State:    p.State,
		})
	}
	return out, nil
}

// AcceptedAffiliations returns every accepted affiliation pair for replay.
func (s *SyncSource) AcceptedAffiliations(ctx context.Context) ([]gsync.AffiliationRecord, error) {
	accepted, err := s.affiliations.Accepted(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]gsync.AffiliationRecord, 0, len(accepted))
	for _, a := range accepted {
		out = append(out, gsync.AffiliationRecord{FromID: a.FromID, ToID: a.ToID})
	}
	return out, nil
}

// PersonSpecialties returns every person-specialty assignment for replay.
func (s *SyncSource) PersonSpecialties(ctx context.Context) ([]gsync.SpecialtyLink, error) {
	rows, err := s.db.conn.QueryContext(ctx, `
		SELECT ps.person_id, ps.specialty_id, sp.name, ps.is_primary
		FROM person_specialties ps
		JOIN specialties sp ON sp.id = ps.specialty_id
		ORDER BY ps.person_id`)
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "listing person specialties", err)
	}
	defer rows.Close()

	var out []gsync.SpecialtyLink
	for rows.Next() {
		var link gsync.SpecialtyLink
		var isPrimary int
		if err := rows.Scan(&link.PersonID, &link.SpecialtyID, &link.SpecialtyName, &isPrimary); err != nil {
			return nil, types.WrapError(types.DB_QUERY_FAILED, "scanning specialty row", err)
		}
		link.IsPrimary = isPrimary == 1
		out = append(out, link)
	}
	if err := rows.Err(); err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "iterating specialty rows", err)
	}
	return out, nil
}

// Compile-time check against the synchronizer contract.
var _ gsync.Source = (*SyncSource)(nil)
