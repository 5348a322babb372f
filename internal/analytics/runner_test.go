package analytics

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medconnect/graphd/internal/graph"
)

func TestRunOnce_FallsBackWithoutPlugin(t *testing.T) {
	mock := graph.NewMockClient()
	mock.SetReadHandler(func(cypher string, params map[string]any) ([]graph.Record, error) {
		if strings.Contains(cypher, "gds.version()") {
			return nil, errors.New("Unknown function 'gds.version'")
		}
		return []graph.Record{}, nil
	})

	r := NewRunner(mock, nil)
	require.NoError(t, r.RunOnce(context.Background()))

	// Every write in the cycle came from the fallback: no gds calls at all.
	for _, call := range mock.CallsFor("Write") {
		assert.NotContains(t, call.Cypher, "gds.")
	}
	// The fallback populated the rank properties.
	var sawPageRank, sawBetweenness bool
	for _, call := range mock.CallsFor("Write") {
		if strings.Contains(call.Cypher, "p.pageRank = p.tempPageRank") {
			sawPageRank = true
		}
		if strings.Contains(call.Cypher, "p.betweenness =") {
			sawBetweenness = true
		}
	}
	assert.True(t, sawPageRank, "fallback must store pageRank")
	assert.True(t, sawBetweenness, "fallback must store betweenness proxy")
}

func TestRunOnce_UsesPluginWhenAvailable(t *testing.T) {
	mock := graph.NewMockClient()
	// Default read handler answers everything, including the probe.
	r := NewRunner(mock, nil)
	require.NoError(t, r.RunOnce(context.Background()))

	writes := mock.CallsFor("Write")
	require.NotEmpty(t, writes)

	var sawProjection, sawPageRank, sawLouvain, sawSimilarity bool
	for _, call := range writes {
		switch {
		case strings.Contains(call.Cypher, "gds.graph.project"):
			sawProjection = true
		case strings.Contains(call.Cypher, "gds.pageRank.write"):
			sawPageRank = true
		case strings.Contains(call.Cypher, "gds.louvain.write"):
			sawLouvain = true
		case strings.Contains(call.Cypher, "gds.nodeSimilarity.write"):
			sawSimilarity = true
		}
	}
	assert.True(t, sawProjection)
	assert.True(t, sawPageRank)
	assert.True(t, sawLouvain)
	assert.True(t, sawSimilarity)
}

func TestGDSEngine_SimilarityFailureDoesNotFailRun(t *testing.T) {
	mock := graph.NewMockClient()

	// Fail only the similarity write; everything else succeeds.
	failing := &similarityFailingClient{MockClient: mock}
	e := NewGDSEngine(failing, nil)

	require.NoError(t, e.Run(context.Background()))
}

type similarityFailingClient struct {
	*graph.MockClient
}

func (c *similarityFailingClient) Write(ctx context.Context, cypher string, params map[string]any) ([]graph.Record, error) {
	if strings.Contains(cypher, "gds.nodeSimilarity.write") {
		return nil, errors.New("Failed to compute similarity: not enough nodes")
	}
	return c.MockClient.Write(ctx, cypher, params)
}

func TestManualEngine_RunsFixedIterations(t *testing.T) {
	mock := graph.NewMockClient()
	e := NewManualEngine(mock, nil)
	require.NoError(t, e.Run(context.Background()))

	var iterations int
	for _, call := range mock.CallsFor("Write") {
		if strings.Contains(call.Cypher, "SET p.newPageRank") {
			iterations++
			assert.InDelta(t, 0.15, call.Params["base"], 1e-9)
			assert.InDelta(t, 0.85, call.Params["damping"], 1e-9)
		}
	}
	assert.Equal(t, manualIterations, iterations)
}

func TestRunOnce_EngineFailureSurfaces(t *testing.T) {
	mock := graph.NewMockClient()
	mock.SetWriteError(errors.New("Neo.TransientError.General.DatabaseUnavailable"))
	r := NewRunner(mock, nil)
	assert.Error(t, r.RunOnce(context.Background()))
}
