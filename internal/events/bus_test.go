package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receiveEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestBus_PublishReachesSubscriber(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch, cleanup := bus.Subscribe(context.Background(), Filter{}, 0)
	defer cleanup()

	sent := NewEntityEvent(EventPersonCreated, "p1", map[string]any{"fullName": "Ana"})
	require.NoError(t, bus.Publish(context.Background(), sent))

	got := receiveEvent(t, ch)
	assert.Equal(t, EventPersonCreated, got.Type)
	assert.Equal(t, "p1", got.ExternalID)
}

func TestBus_FilterByType(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch, cleanup := bus.Subscribe(context.Background(), Filter{
		Types: []EventType{EventAffiliationCreated},
	}, 0)
	defer cleanup()

	require.NoError(t, bus.Publish(context.Background(),
		NewEntityEvent(EventPersonCreated, "p1", nil)))
	require.NoError(t, bus.Publish(context.Background(),
		NewRelationshipEvent(EventAffiliationCreated, "p1", "p2", nil)))

	got := receiveEvent(t, ch)
	assert.Equal(t, EventAffiliationCreated, got.Type)
	assert.Equal(t, "p1", got.FromID)
	assert.Equal(t, "p2", got.ToID)
	assert.Empty(t, ch)
}

func TestBus_SlowSubscriberDropsWithoutBlocking(t *testing.T) {
	var dropped int
	bus := NewBus(WithErrorHandler(func(err error, ctx map[string]any) {
		dropped++
	}))
	defer bus.Close()

	// Buffer of one; nobody draining.
	_, cleanup := bus.Subscribe(context.Background(), Filter{}, 1)
	defer cleanup()

	require.NoError(t, bus.Publish(context.Background(), NewEntityEvent(EventPersonCreated, "p1", nil)))
	require.NoError(t, bus.Publish(context.Background(), NewEntityEvent(EventPersonCreated, "p2", nil)))

	assert.Equal(t, 1, dropped)
}

func TestBus_PublishAfterCloseFails(t *testing.T) {
	bus := NewBus()
	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close()) // idempotent

	err := bus.Publish(context.Background(), NewEntityEvent(EventPersonCreated, "p1", nil))
	assert.Error(t, err)
}

func TestFilter_ZeroMatchesAll(t *testing.T) {
	assert.True(t, Filter{}.Matches(NewEntityEvent(EventSkillAdded, "p1", nil)))
	assert.False(t, Filter{Types: []EventType{EventSkillRemoved}}.
		Matches(NewEntityEvent(EventSkillAdded, "p1", nil)))
}
