package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medconnect/graphd/internal/events"
	"github.com/medconnect/graphd/internal/graph"
)

func TestHandle_PersonCreatedMergesByExternalID(t *testing.T) {
	mock := graph.NewMockClient()
	s := New(mock, nil)

	ev := events.NewEntityEvent(events.EventPersonCreated, "p1", map[string]any{
		"fullName": "Ana Souza",
		"city":     "São Paulo",
	})
	require.NoError(t, s.Handle(context.Background(), ev))

	calls := mock.CallsFor("Write")
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Cypher, "MERGE (n:Person {extId: $id})")
	assert.Equal(t, "p1", calls[0].Params["id"])
	assert.Equal(t, "Ana Souza", calls[0].Params["fullName"])
}

func TestHandle_SameEventTwiceProducesIdenticalStatements(t *testing.T) {
	mock := graph.NewMockClient()
	s := New(mock, nil)

	ev := events.NewEntityEvent(events.EventPersonCreated, "p1", map[string]any{
		"fullName": "Ana Souza",
		"city":     "São Paulo",
		"state":    "SP",
	})
	require.NoError(t, s.Handle(context.Background(), ev))
	require.NoError(t, s.Handle(context.Background(), ev))

	calls := mock.CallsFor("Write")
	require.Len(t, calls, 2)
	assert.Equal(t, calls[0].Cypher, calls[1].Cypher)
	assert.Equal(t, calls[0].Params, calls[1].Params)
	assert.Contains(t, calls[0].Cypher, "MERGE")
	assert.NotContains(t, calls[0].Cypher, "CREATE (")
}

func TestHandle_PartialUpdateOnlyTouchesSuppliedFields(t *testing.T) {
	mock := graph.NewMockClient()
	s := New(mock, nil)

	ev := events.NewEntityEvent(events.EventPersonUpdated, "p1", map[string]any{
		"city": "Campinas",
	})
	require.NoError(t, s.Handle(context.Background(), ev))

	calls := mock.CallsFor("Write")
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Cypher, "SET n.city = $city")
	assert.NotContains(t, calls[0].Cypher, "fullName")
	assert.NotContains(t, calls[0].Cypher, "state")
}

func TestHandle_UpdateWithNoFieldsIsNoOp(t *testing.T) {
	mock := graph.NewMockClient()
	s := New(mock, nil)

	ev := events.NewEntityEvent(events.EventPersonUpdated, "p1", nil)
	require.NoError(t, s.Handle(context.Background(), ev))
	assert.Empty(t, mock.Calls())
}

func TestHandle_AffiliationCreatesBothDirectionsInOneWrite(t *testing.T) {
	mock := graph.NewMockClient()
	s := New(mock, nil)

	ev := events.NewRelationshipEvent(events.EventAffiliationCreated, "p1", "p2", nil)
	require.NoError(t, s.Handle(context.Background(), ev))

	calls := mock.CallsFor("Write")
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Cypher, "MERGE (a)-[ab:CONNECTED_TO]->(b)")
	assert.Contains(t, calls[0].Cypher, "MERGE (b)-[ba:CONNECTED_TO]->(a)")
}

func TestHandle_AffiliationRemovalMatchesUndirected(t *testing.T) {
	mock := graph.NewMockClient()
	s := New(mock, nil)

	ev := events.NewRelationshipEvent(events.EventAffiliationRemoved, "p1", "p2", nil)
	require.NoError(t, s.Handle(context.Background(), ev))

	calls := mock.CallsFor("Write")
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Cypher, "-[r:CONNECTED_TO]-")
	assert.Contains(t, calls[0].Cypher, "DELETE r")
}

func TestHandle_WorkplaceRecomputesPointOnEveryUpsert(t *testing.T) {
	mock := graph.NewMockClient()
	s := New(mock, nil)

	ev := events.NewEntityEvent(events.EventWorkplaceUpserted, "w1", map[string]any{
		"personId":  "p1",
		"name":      "Clínica Central",
		"city":      "São Paulo",
		"state":     "SP",
		"latitude":  -23.5505,
		"longitude": -46.6333,
	})
	require.NoError(t, s.Handle(context.Background(), ev))
	require.NoError(t, s.Handle(context.Background(), ev))

	calls := mock.CallsFor("Write")
	require.Len(t, calls, 2)
	for _, call := range calls {
		// The point is in the unconditional SET, not only ON CREATE.
		assert.Contains(t, call.Cypher, "w.location = point({latitude: $latitude, longitude: $longitude})")
		assert.NotContains(t, call.Cypher, "ON MATCH")
	}
}

func TestHandle_OpportunityCreatedUsesOneAtomicBatch(t *testing.T) {
	mock := graph.NewMockClient()
	s := New(mock, nil)

	ev := events.NewEntityEvent(events.EventOpportunityCreated, "o1", map[string]any{
		"organizationId": "org1",
		"title":          "Cardiologist, night shift",
		"type":           "FULL_TIME",
		"specialtyId":    "sp1",
	})
	require.NoError(t, s.Handle(context.Background(), ev))

	batches := mock.CallsFor("WriteBatch")
	require.Len(t, batches, 1)
	require.Len(t, batches[0].Ops, 2)
	assert.Contains(t, batches[0].Ops[0].Cypher, "MERGE (o)-[:POSTED]->(j)")
	assert.Contains(t, batches[0].Ops[1].Cypher, "REQUIRES_SPECIALTY")
}

func TestHandle_OpportunityWithoutSpecialtySkipsSecondOp(t *testing.T) {
	mock := graph.NewMockClient()
	s := New(mock, nil)

	ev := events.NewEntityEvent(events.EventOpportunityCreated, "o2", map[string]any{
		"organizationId": "org1",
		"title":          "General practitioner",
		"type":           "PART_TIME",
	})
	require.NoError(t, s.Handle(context.Background(), ev))

	batches := mock.CallsFor("WriteBatch")
	require.Len(t, batches, 1)
	assert.Len(t, batches[0].Ops, 1)
}

func TestHandle_EndorsementSetsAuthoritativeCount(t *testing.T) {
	mock := graph.NewMockClient()
	s := New(mock, nil)

	ev := events.NewRelationshipEvent(events.EventSkillEndorsed, "p1", "p2", map[string]any{
		"skill": "echocardiography",
		"count": 3,
	})
	require.NoError(t, s.Handle(context.Background(), ev))
	require.NoError(t, s.Handle(context.Background(), ev))

	calls := mock.CallsFor("Write")
	require.Len(t, calls, 2)
	assert.Contains(t, calls[0].Cypher, "SET e.count = $count")
	assert.NotContains(t, calls[0].Cypher, "e.count + 1")
}

func TestHandle_UnknownEventTypeErrors(t *testing.T) {
	s := New(graph.NewMockClient(), nil)
	err := s.Handle(context.Background(), events.Event{Type: "bogus.event"})
	assert.Error(t, err)
}

func TestStart_FailedEventDoesNotBlockStream(t *testing.T) {
	mock := graph.NewMockClient()
	mock.SetWriteError(errors.New("Neo.ClientError.Schema.ConstraintValidationFailed"))
	s := New(mock, nil)

	bus := events.NewBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx, bus)

	require.NoError(t, bus.Publish(ctx, events.NewEntityEvent(events.EventPersonCreated, "p1", map[string]any{"fullName": "A"})))

	// The next event is still consumed after the first one failed.
	mock.SetWriteError(nil)
	require.NoError(t, bus.Publish(ctx, events.NewEntityEvent(events.EventPersonCreated, "p2", map[string]any{"fullName": "B"})))

	assert.Eventually(t, func() bool {
		return len(mock.CallsFor("Write")) == 2
	}, time.Second, 10*time.Millisecond)
}

type fakeSource struct {
	people       []PersonRecord
	affiliations []AffiliationRecord
	specialties  []SpecialtyLink
}

func (f *fakeSource) People(context.Context) ([]PersonRecord, error) { return f.people, nil }
func (f *fakeSource) AcceptedAffiliations(context.Context) ([]AffiliationRecord, error) {
	return f.affiliations, nil
}
func (f *fakeSource) PersonSpecialties(context.Context) ([]SpecialtyLink, error) {
	return f.specialties, nil
}

func TestResync_ReplaysSourceOfTruth(t *testing.T) {
	mock := graph.NewMockClient()
	s := New(mock, nil)

	src := &fakeSource{
		people: []PersonRecord{
			{ExtID: "p1", FullName: "Ana Souza", City: "São Paulo", State: "SP"},
			{ExtID: "p2", FullName: "Bruno Lima", City: "Rio de Janeiro", State: "RJ"},
		},
		affiliations: []AffiliationRecord{{FromID: "p1", ToID: "p2"}},
		specialties: []SpecialtyLink{
			{PersonID: "p1", SpecialtyID: "sp1", SpecialtyName: "Cardiology", IsPrimary: true},
		},
	}

	require.NoError(t, s.Resync(context.Background(), src))

	// 2 person merges + 1 specialty + 1 affiliation.
	assert.Len(t, mock.CallsFor("Write"), 4)
}
