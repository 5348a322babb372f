package analytics

import (
	"context"
	"log/slog"

	"github.com/medconnect/graphd/internal/graph"
	"github.com/medconnect/graphd/internal/types"
)

const (
	dampingFactor      = 0.85
	manualIterations   = 10
	degreeBridgeFactor = 10.0
)

// manualEngine approximates the algorithm suite with plain Cypher for
// servers without the GDS plugin. Rank quality is lower, but the same
// properties end up populated, so the query surface works unchanged.
type manualEngine struct {
	client graph.Client
	logger *slog.Logger
}

// NewManualEngine creates the plain-Cypher fallback engine.
func NewManualEngine(client graph.Client, logger *slog.Logger) Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &manualEngine{client: client, logger: logger}
}

func (e *manualEngine) Name() string { return "manual" }

func (e *manualEngine) Run(ctx context.Context) error {
	if err := e.computePageRank(ctx); err != nil {
		return err
	}
	if err := e.computeBetweennessProxy(ctx); err != nil {
		return err
	}
	return nil
}

// computePageRank runs a fixed-iteration power method over CONNECTED_TO.
// Ranks are staged on temp properties so a failed cycle never leaves a
// half-updated pageRank behind.
func (e *manualEngine) computePageRank(ctx context.Context) error {
	if _, err := e.client.Write(ctx,
		"MATCH (p:Person) SET p.tempPageRank = 1.0", nil); err != nil {
		return types.WrapError(types.ANALYTICS_RUN_FAILED, "initializing ranks", err)
	}

	iterate := `MATCH (p:Person)
OPTIONAL MATCH (p)<-[:CONNECTED_TO]-(neighbor:Person)
WITH p, neighbor, neighbor.tempPageRank AS neighborRank,
     count {(neighbor)-[:CONNECTED_TO]->()} AS neighborOutDegree
WITH p, coalesce(sum(neighborRank / CASE WHEN neighborOutDegree > 0 THEN neighborOutDegree ELSE 1 END), 0) AS contribution
SET p.newPageRank = $base + $damping * contribution`

	params := map[string]any{
		"base":    1.0 - dampingFactor,
		"damping": dampingFactor,
	}

	for i := 0; i < manualIterations; i++ {
		if _, err := e.client.Write(ctx, iterate, params); err != nil {
			return types.WrapError(types.ANALYTICS_RUN_FAILED, "iterating ranks", err)
		}
		if _, err := e.client.Write(ctx,
			"MATCH (p:Person) SET p.tempPageRank = p.newPageRank", nil); err != nil {
			return types.WrapError(types.ANALYTICS_RUN_FAILED, "advancing ranks", err)
		}
	}

	if _, err := e.client.Write(ctx, `MATCH (p:Person)
SET p.pageRank = p.tempPageRank
REMOVE p.tempPageRank, p.newPageRank`, nil); err != nil {
		return types.WrapError(types.ANALYTICS_RUN_FAILED, "storing ranks", err)
	}
	e.logger.Debug("manual pageRank computed", "iterations", manualIterations)
	return nil
}

// computeBetweennessProxy uses scaled degree centrality in place of true
// betweenness. Hubs and brokers correlate strongly enough on this network
// for a top-N listing.
func (e *manualEngine) computeBetweennessProxy(ctx context.Context) error {
	cypher := `MATCH (p:Person)-[c:CONNECTED_TO]-()
WITH p, count(c) AS degree
SET p.betweenness = toFloat(degree) * $factor`
	if _, err := e.client.Write(ctx, cypher,
		map[string]any{"factor": degreeBridgeFactor}); err != nil {
		return types.WrapError(types.ANALYTICS_RUN_FAILED, "computing degree proxy", err)
	}
	e.logger.Debug("manual betweenness proxy computed")
	return nil
}
