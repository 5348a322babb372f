package sync

import (
	"context"

	"github.com/medconnect/graphd/internal/events"
	"github.com/medconnect/graphd/internal/types"
)

// PersonRecord is the slice of a relational person row the mirror needs.
type PersonRecord struct {
	ExtID    string
	FullName string
	City     string
	State    string
}

// AffiliationRecord is one accepted affiliation pair.
type AffiliationRecord struct {
	FromID string
	ToID   string
}

// SpecialtyLink is one person-specialty assignment.
type SpecialtyLink struct {
	PersonID      string
	SpecialtyID   string
	SpecialtyName string
	IsPrimary     bool
}

// Source exposes the relational rows a full resync replays.
type Source interface {
	People(ctx context.Context) ([]PersonRecord, error)
	AcceptedAffiliations(ctx context.Context) ([]AffiliationRecord, error)
	PersonSpecialties(ctx context.Context) ([]SpecialtyLink, error)
}

// Resync replays the relational source of truth into the graph as synthetic
// created events. Because every handler merges by external id, replaying over
// an existing mirror is safe; this is the recovery path for events lost to
// handler failures.
func (s *Synchronizer) Resync(ctx context.Context, src Source) error {
	people, err := src.People(ctx)
	if err != nil {
		return types.WrapError(types.SYNC_RESYNC_FAILED, "loading people", err)
	}
	for _, p := range people {
		ev := events.NewEntityEvent(events.EventPersonCreated, p.ExtID, map[string]any{
			"fullName": p.FullName,
			"city":     p.City,
			"state":    p.State,
		})
		if err := s.Handle(ctx, ev); err != nil {
			s.logger.Error("resync person failed", "external_id", p.ExtID, "error", err)
		}
	}

	links, err := src.PersonSpecialties(ctx)
	if err != nil {
		return types.WrapError(types.SYNC_RESYNC_FAILED, "loading specialties", err)
	}
	for _, l := range links {
		ev := events.NewRelationshipEvent(events.EventSpecialtyAdded, l.PersonID, l.SpecialtyID, map[string]any{
			"name":      l.SpecialtyName,
			"isPrimary": l.IsPrimary,
		})
		if err := s.Handle(ctx, ev); err != nil {
			s.logger.Error("resync specialty failed", "person_id", l.PersonID, "error", err)
		}
	}

	affiliations, err := src.AcceptedAffiliations(ctx)
	if err != nil {
		return types.WrapError(types.SYNC_RESYNC_FAILED, "loading affiliations", err)
	}
	for _, a := range affiliations {
		ev := events.NewRelationshipEvent(events.EventAffiliationCreated, a.FromID, a.ToID, nil)
		if err := s.Handle(ctx, ev); err != nil {
			s.logger.Error("resync affiliation failed", "from_id", a.FromID, "to_id", a.ToID, "error", err)
		}
	}

	s.logger.Info("resync complete",
		"people", len(people), "specialties", len(links), "affiliations", len(affiliations))
	return nil
}
