// Package recommend produces affiliation suggestions through a waterfall of
// strategies: network structure first, shared specialty second, recent
// arrivals from the relational store last. Later stages only fill what
// earlier stages left open.
package recommend

import (
	"context"
	"log/slog"

	"github.com/medconnect/graphd/internal/graph"
	"github.com/medconnect/graphd/internal/relational"
	"github.com/medconnect/graphd/internal/types"
)

// Suggestion sources, in waterfall order.
const (
	SourceMutual    = "mutual"
	SourceSpecialty = "specialty"
	SourceRecent    = "recent"
)

// Suggestion is one recommended affiliation.
type Suggestion struct {
	ID                string
	FullName          string
	MutualConnections int64
	SharedSpecialties []string
	Source            string
}

// PeopleStore is the relational slice the fallback stage needs.
type PeopleStore interface {
	ConnectedIDs(ctx context.Context, personID string) ([]string, error)
	PendingIDs(ctx context.Context, personID string) ([]string, error)
	RecentExcluding(ctx context.Context, exclude []string, limit int) ([]relational.Person, error)
}

// stage produces up to remaining suggestions, skipping the excluded ids.
type stage struct {
	name string
	run  func(ctx context.Context, subjectID string, exclude []string, remaining int) ([]Suggestion, error)
}

// Engine runs the suggestion waterfall.
type Engine struct {
	client graph.Client
	store  PeopleStore
	logger *slog.Logger
	stages []stage
}

// NewEngine creates a recommendation engine over the graph mirror and the
// relational store.
func NewEngine(client graph.Client, store PeopleStore, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{client: client, store: store, logger: logger}
	e.stages = []stage{
		{name: SourceMutual, run: e.mutualStage},
		{name: SourceSpecialty, run: e.specialtyStage},
		{name: SourceRecent, run: e.recentStage},
	}
	return e
}

// SuggestAffiliations returns up to limit suggestions for the subject.
// A failing stage is logged and skipped; the waterfall errors only when every
// stage failed and nothing was produced.
func (e *Engine) SuggestAffiliations(ctx context.Context, subjectID string, limit int) ([]Suggestion, error) {
	if limit <= 0 {
		limit = 10
	}

	results := make([]Suggestion, 0, limit)
	seen := map[string]bool{subjectID: true}
	var failures int

	for _, st := range e.stages {
		remaining := limit - len(results)
		if remaining <= 0 {
			break
		}

		exclude := make([]string, 0, len(seen))
		for id := range seen {
			exclude = append(exclude, id)
		}

		found, err := st.run(ctx, subjectID, exclude, remaining)
		if err != nil {
			failures++
			e.logger.Error("suggestion stage failed",
				"stage", st.name, "subject_id", subjectID, "error", err)
			continue
		}

		for _, s := range found {
			if seen[s.ID] {
				continue
			}
			seen[s.ID] = true
			s.Source = st.name
			results = append(results, s)
			if len(results) >= limit {
				break
			}
		}
	}

	if len(results) == 0 && failures == len(e.stages) {
		return nil, types.NewError(types.DB_QUERY_FAILED, "every suggestion stage failed")
	}
	return results, nil
}

// mutualStage suggests people two hops away, ranked by how many affiliations
// they share with the subject.
func (e *Engine) mutualStage(ctx context.Context, subjectID string, exclude []string, remaining int) ([]Suggestion, error) {
	records, err := e.client.Read(ctx, `MATCH (me:Person {extId: $subjectId})-[:CONNECTED_TO]->(friend:Person)-[:CONNECTED_TO]->(suggestion:Person)
WHERE suggestion.extId <> $subjectId
  AND NOT (me)-[:CONNECTED_TO]->(suggestion)
WITH suggestion, count(friend) AS mutualConnections
ORDER BY mutualConnections DESC
LIMIT toInteger($limit)
RETURN suggestion.extId AS id, suggestion.fullName AS fullName, mutualConnections`,
		map[string]any{"subjectId": subjectID, "limit": remaining})
	if err != nil {
		return nil, err
	}

	out := make([]Suggestion, 0, len(records))
	for _, rec := range records {
		out = append(out, Suggestion{
			ID:                graph.AsString(rec["id"]),
			FullName:          graph.AsString(rec["fullName"]),
			MutualConnections: graph.AsInt64(rec["mutualConnections"]),
		})
	}
	return out, nil
}

// specialtyStage suggests unaffiliated people sharing a specialty, skipping
// everyone an earlier stage already produced.
func (e *Engine) specialtyStage(ctx context.Context, subjectID string, exclude []string, remaining int) ([]Suggestion, error) {
	records, err := e.client.Read(ctx, `MATCH (me:Person {extId: $subjectId})-[:SPECIALIZES_IN]->(spec:Specialty)<-[:SPECIALIZES_IN]-(suggestion:Person)
WHERE suggestion.extId <> $subjectId
  AND NOT (me)-[:CONNECTED_TO]->(suggestion)
  AND NOT suggestion.extId IN $excludeIds
WITH suggestion, collect(spec.name) AS sharedSpecialties
LIMIT toInteger($limit)
RETURN suggestion.extId AS id, suggestion.fullName AS fullName, sharedSpecialties`,
		map[string]any{"subjectId": subjectID, "excludeIds": exclude, "limit": remaining})
	if err != nil {
		return nil, err
	}

	out := make([]Suggestion, 0, len(records))
	for _, rec := range records {
		s := Suggestion{
			ID:       graph.AsString(rec["id"]),
			FullName: graph.AsString(rec["fullName"]),
		}
		if specs, ok := rec["sharedSpecialties"].([]any); ok {
			for _, sp := range specs {
				s.SharedSpecialties = append(s.SharedSpecialties, graph.AsString(sp))
			}
		}
		out = append(out, s)
	}
	return out, nil
}

// recentStage pads the result with the newest people on the platform that the
// subject has no relationship with: not connected, no open request, not
// already suggested.
func (e *Engine) recentStage(ctx context.Context, subjectID string, exclude []string, remaining int) ([]Suggestion, error) {
	connected, err := e.store.ConnectedIDs(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	pending, err := e.store.PendingIDs(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	skip := make([]string, 0, len(exclude)+len(connected)+len(pending))
	skip = append(skip, exclude...)
	skip = append(skip, connected...)
	skip = append(skip, pending...)

	people, err := e.store.RecentExcluding(ctx, skip, remaining)
	if err != nil {
		return nil, err
	}

	out := make([]Suggestion, 0, len(people))
	for _, p := range people {
		out = append(out, Suggestion{ID: p.ID, FullName: p.FullName})
	}
	return out, nil
}
