package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies the kind of domain event emitted by the relational
// write path. The synchronizer registers one handler per type.
type EventType string

// Entity lifecycle events
const (
	EventPersonCreated       EventType = "person.created"
	EventPersonUpdated       EventType = "person.updated"
	EventPersonRemoved       EventType = "person.removed"
	EventOrganizationCreated EventType = "organization.created"
	EventOrganizationUpdated EventType = "organization.updated"
	EventWorkplaceUpserted   EventType = "workplace.upserted"
	EventWorkplaceRemoved    EventType = "workplace.removed"
	EventOpportunityCreated  EventType = "opportunity.created"
	EventOpportunityClosed   EventType = "opportunity.closed"
)

// Relationship events
const (
	EventSpecialtyAdded     EventType = "specialty.added"
	EventSpecialtyRemoved   EventType = "specialty.removed"
	EventSkillAdded         EventType = "skill.added"
	EventSkillRemoved       EventType = "skill.removed"
	EventWorksAtCreated     EventType = "worksat.created"
	EventWorksAtRemoved     EventType = "worksat.removed"
	EventAffiliationCreated EventType = "affiliation.created"
	EventAffiliationRemoved EventType = "affiliation.removed"
	EventFollowCreated      EventType = "follow.created"
	EventFollowRemoved      EventType = "follow.removed"
	EventSkillEndorsed      EventType = "skill.endorsed"
)

// Event is the envelope consumed by the synchronizer. Entity events carry
// ExternalID plus a (possibly partial) Fields map; relationship events carry
// FromID/ToID plus optional Props. Handlers must tolerate partial Fields.
type Event struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	ExternalID string         `json:"external_id,omitempty"`
	Fields     map[string]any `json:"fields,omitempty"`
	FromID     string         `json:"from_id,omitempty"`
	ToID       string         `json:"to_id,omitempty"`
	Props      map[string]any `json:"props,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// NewEntityEvent builds an entity event with a fresh id and timestamp.
func NewEntityEvent(t EventType, externalID string, fields map[string]any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		ExternalID: externalID,
		Fields:     fields,
		OccurredAt: time.Now().UTC(),
	}
}

// NewRelationshipEvent builds a relationship event with a fresh id and timestamp.
func NewRelationshipEvent(t EventType, fromID, toID string, props map[string]any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		FromID:     fromID,
		ToID:       toID,
		Props:      props,
		OccurredAt: time.Now().UTC(),
	}
}

// Filter restricts which events a subscription receives.
// A zero Filter matches every event.
type Filter struct {
	Types []EventType
}

// Matches reports whether the event passes the filter.
func (f Filter) Matches(e Event) bool {
	if len(f.Types) == 0 {
		return true
	}
	for _, t := range f.Types {
		if e.Type == t {
			return true
		}
	}
	return false
}
