// Package sync mirrors relational writes into the graph database.
//
// The synchronizer consumes domain events out-of-band relative to the
// relational transaction that produced them: the relational write commits
// first, then the graph mirror is updated at-least-once. Every handler uses
// MERGE keyed by external id, so re-delivery (or a client-level retry) leaves
// the graph unchanged after the first application. Handler failures are
// logged, never retried; a future corrective event or a full Resync recovers
// the lost update.
package sync

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/medconnect/graphd/internal/events"
	"github.com/medconnect/graphd/internal/graph"
	"github.com/medconnect/graphd/internal/types"
)

// Synchronizer applies domain events to the graph mirror.
type Synchronizer struct {
	client graph.Client
	logger *slog.Logger
}

// New creates a Synchronizer writing through the given client.
func New(client graph.Client, logger *slog.Logger) *Synchronizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Synchronizer{client: client, logger: logger}
}

// Start subscribes to the bus and consumes events until the context is
// cancelled or the subscription channel closes. One failed event never blocks
// the rest of the stream.
func (s *Synchronizer) Start(ctx context.Context, bus events.Bus) {
	ch, cleanup := bus.Subscribe(ctx, events.Filter{}, 0)

	go func() {
		defer cleanup()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				if err := s.Handle(ctx, ev); err != nil {
					s.logger.Error("graph sync failed",
						"event_type", ev.Type,
						"external_id", ev.ExternalID,
						"from_id", ev.FromID,
						"to_id", ev.ToID,
						"error", err,
					)
					continue
				}
				s.logger.Debug("graph sync applied", "event_type", ev.Type)
			}
		}
	}()
}

// Handle applies a single event. Handlers are idempotent: applying the same
// event twice yields identical graph state.
func (s *Synchronizer) Handle(ctx context.Context, ev events.Event) error {
	switch ev.Type {
	case events.EventPersonCreated:
		return s.upsertEntity(ctx, "Person", ev)
	case events.EventPersonUpdated:
		return s.updateEntity(ctx, "Person", ev)
	case events.EventPersonRemoved:
		return s.removeEntity(ctx, "Person", ev)
	case events.EventOrganizationCreated:
		return s.upsertEntity(ctx, "Organization", ev)
	case events.EventOrganizationUpdated:
		return s.updateEntity(ctx, "Organization", ev)
	case events.EventWorkplaceUpserted:
		return s.upsertWorkplace(ctx, ev)
	case events.EventWorkplaceRemoved:
		return s.removeEntity(ctx, "Workplace", ev)
	case events.EventOpportunityCreated:
		return s.createOpportunity(ctx, ev)
	case events.EventOpportunityClosed:
		return s.closeOpportunity(ctx, ev)
	case events.EventSpecialtyAdded:
		return s.addSpecialty(ctx, ev)
	case events.EventSpecialtyRemoved:
		return s.removeEdge(ctx, "Person", "Specialty", "SPECIALIZES_IN", ev)
	case events.EventSkillAdded:
		return s.addSkill(ctx, ev)
	case events.EventSkillRemoved:
		return s.removeEdge(ctx, "Person", "Skill", "HAS_SKILL", ev)
	case events.EventWorksAtCreated:
		return s.addWorksAt(ctx, ev)
	case events.EventWorksAtRemoved:
		return s.removeEdge(ctx, "Person", "Organization", "WORKS_AT", ev)
	case events.EventAffiliationCreated:
		return s.addAffiliation(ctx, ev)
	case events.EventAffiliationRemoved:
		return s.removeAffiliation(ctx, ev)
	case events.EventFollowCreated:
		return s.addFollow(ctx, ev)
	case events.EventFollowRemoved:
		return s.removeEdge(ctx, "Person", "Person", "FOLLOWS", ev)
	case events.EventSkillEndorsed:
		return s.endorseSkill(ctx, ev)
	default:
		return types.NewError(types.SYNC_HANDLER_FAILED,
			fmt.Sprintf("no handler for event type %q", ev.Type))
	}
}

// ─── Entity handlers ─────────────────────────────────────────────

func (s *Synchronizer) upsertEntity(ctx context.Context, label string, ev events.Event) error {
	cypher, params := mergeEntityCypher(label, ev.Fields)
	params["id"] = ev.ExternalID
	_, err := s.client.Write(ctx, cypher, params)
	return err
}

func (s *Synchronizer) updateEntity(ctx context.Context, label string, ev events.Event) error {
	cypher, params, ok := updateEntityCypher(label, ev.Fields)
	if !ok {
		// Nothing changed; tolerate empty partial updates.
		return nil
	}
	params["id"] = ev.ExternalID
	_, err := s.client.Write(ctx, cypher, params)
	return err
}

func (s *Synchronizer) removeEntity(ctx context.Context, label string, ev events.Event) error {
	cypher := fmt.Sprintf("MATCH (n:%s {extId: $id}) DETACH DELETE n", label)
	_, err := s.client.Write(ctx, cypher, map[string]any{"id": ev.ExternalID})
	return err
}

// upsertWorkplace mirrors a workplace with its geographic point and place
// hierarchy. The point property is recomputed from latitude/longitude on
// every apply so it can never go stale.
func (s *Synchronizer) upsertWorkplace(ctx context.Context, ev events.Event) error {
	cypher := `MATCH (p:Person {extId: $personId})
MERGE (w:Workplace {extId: $id})
SET w.name = $name,
    w.city = $city,
    w.state = $state,
    w.latitude = $latitude,
    w.longitude = $longitude,
    w.location = point({latitude: $latitude, longitude: $longitude})
MERGE (p)-[:WORKS_AT_LOCATION]->(w)
MERGE (c:City {name: $city})
MERGE (st:State {code: $state})
MERGE (c)-[:IN_STATE]->(st)
MERGE (w)-[:LOCATED_IN]->(c)`

	params := map[string]any{
		"id":        ev.ExternalID,
		"personId":  ev.Fields["personId"],
		"name":      ev.Fields["name"],
		"city":      ev.Fields["city"],
		"state":     ev.Fields["state"],
		"latitude":  ev.Fields["latitude"],
		"longitude": ev.Fields["longitude"],
	}
	_, err := s.client.Write(ctx, cypher, params)
	return err
}

// createOpportunity merges the posting and its edges in one transaction so a
// partial mirror (node without POSTED edge) cannot occur.
func (s *Synchronizer) createOpportunity(ctx context.Context, ev events.Event) error {
	ops := []graph.Operation{
		{
			Cypher: `MATCH (o:Organization {extId: $orgId})
MERGE (j:Opportunity {extId: $id})
SET j.title = $title, j.type = $type, j.isActive = true
MERGE (o)-[:POSTED]->(j)`,
			Params: map[string]any{
				"id":    ev.ExternalID,
				"orgId": ev.Fields["organizationId"],
				"title": ev.Fields["title"],
				"type":  ev.Fields["type"],
			},
		},
	}

	if specialtyID, ok := ev.Fields["specialtyId"].(string); ok && specialtyID != "" {
		ops = append(ops, graph.Operation{
			Cypher: `MATCH (j:Opportunity {extId: $id})
MATCH (sp:Specialty {extId: $specialtyId})
MERGE (j)-[:REQUIRES_SPECIALTY]->(sp)`,
			Params: map[string]any{"id": ev.ExternalID, "specialtyId": specialtyID},
		})
	}
	return s.client.WriteBatch(ctx, ops)
}

func (s *Synchronizer) closeOpportunity(ctx context.Context, ev events.Event) error {
	_, err := s.client.Write(ctx,
		"MATCH (j:Opportunity {extId: $id}) SET j.isActive = false",
		map[string]any{"id": ev.ExternalID})
	return err
}

// ─── Relationship handlers ───────────────────────────────────────

func (s *Synchronizer) addSpecialty(ctx context.Context, ev events.Event) error {
	cypher := `MATCH (p:Person {extId: $fromId})
MERGE (sp:Specialty {extId: $toId})
ON CREATE SET sp.name = $name
MERGE (p)-[r:SPECIALIZES_IN]->(sp)
ON CREATE SET r.isPrimary = $isPrimary`

	isPrimary, _ := ev.Props["isPrimary"].(bool)
	params := map[string]any{
		"fromId":    ev.FromID,
		"toId":      ev.ToID,
		"name":      ev.Props["name"],
		"isPrimary": isPrimary,
	}
	_, err := s.client.Write(ctx, cypher, params)
	return err
}

func (s *Synchronizer) addSkill(ctx context.Context, ev events.Event) error {
	cypher := `MATCH (p:Person {extId: $fromId})
MERGE (sk:Skill {extId: $toId})
ON CREATE SET sk.name = $name
MERGE (p)-[:HAS_SKILL]->(sk)`

	params := map[string]any{
		"fromId": ev.FromID,
		"toId":   ev.ToID,
		"name":   ev.Props["name"],
	}
	_, err := s.client.Write(ctx, cypher, params)
	return err
}

func (s *Synchronizer) addWorksAt(ctx context.Context, ev events.Event) error {
	cypher := `MATCH (p:Person {extId: $fromId})
MATCH (o:Organization {extId: $toId})
MERGE (p)-[r:WORKS_AT]->(o)
ON CREATE SET r.since = datetime(), r.role = $role`

	params := map[string]any{
		"fromId": ev.FromID,
		"toId":   ev.ToID,
		"role":   ev.Props["role"],
	}
	_, err := s.client.Write(ctx, cypher, params)
	return err
}

// addAffiliation materializes the symmetric affiliation as two directed edges
// in one statement, keeping the symmetry invariant even under retry.
func (s *Synchronizer) addAffiliation(ctx context.Context, ev events.Event) error {
	cypher := `MATCH (a:Person {extId: $fromId})
MATCH (b:Person {extId: $toId})
MERGE (a)-[ab:CONNECTED_TO]->(b)
ON CREATE SET ab.since = datetime()
MERGE (b)-[ba:CONNECTED_TO]->(a)
ON CREATE SET ba.since = datetime()`

	_, err := s.client.Write(ctx, cypher,
		map[string]any{"fromId": ev.FromID, "toId": ev.ToID})
	return err
}

// removeAffiliation deletes both directions with an undirected match.
func (s *Synchronizer) removeAffiliation(ctx context.Context, ev events.Event) error {
	cypher := `MATCH (a:Person {extId: $fromId})-[r:CONNECTED_TO]-(b:Person {extId: $toId})
DELETE r`
	_, err := s.client.Write(ctx, cypher,
		map[string]any{"fromId": ev.FromID, "toId": ev.ToID})
	return err
}

func (s *Synchronizer) addFollow(ctx context.Context, ev events.Event) error {
	cypher := `MATCH (a:Person {extId: $fromId})
MATCH (b:Person {extId: $toId})
MERGE (a)-[:FOLLOWS]->(b)`
	_, err := s.client.Write(ctx, cypher,
		map[string]any{"fromId": ev.FromID, "toId": ev.ToID})
	return err
}

// endorseSkill mirrors an endorsement edge. The event carries the
// authoritative count from the relational store, so re-delivery sets the same
// value instead of double-incrementing.
func (s *Synchronizer) endorseSkill(ctx context.Context, ev events.Event) error {
	cypher := `MATCH (a:Person {extId: $fromId})
MATCH (b:Person {extId: $toId})
MERGE (a)-[e:ENDORSED {skill: $skill}]->(b)
SET e.count = $count`

	params := map[string]any{
		"fromId": ev.FromID,
		"toId":   ev.ToID,
		"skill":  ev.Props["skill"],
		"count":  ev.Props["count"],
	}
	_, err := s.client.Write(ctx, cypher, params)
	return err
}

func (s *Synchronizer) removeEdge(ctx context.Context, fromLabel, toLabel, relType string, ev events.Event) error {
	cypher := fmt.Sprintf(
		"MATCH (a:%s {extId: $fromId})-[r:%s]->(b:%s {extId: $toId}) DELETE r",
		fromLabel, relType, toLabel)
	_, err := s.client.Write(ctx, cypher,
		map[string]any{"fromId": ev.FromID, "toId": ev.ToID})
	return err
}
