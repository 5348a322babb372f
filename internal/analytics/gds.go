package analytics

import (
	"context"
	"log/slog"

	"github.com/medconnect/graphd/internal/graph"
	"github.com/medconnect/graphd/internal/types"
)

// projectionName is the in-memory GDS graph name.
const projectionName = "medconnect"

// gdsEngine runs the algorithm suite through the Graph Data Science plugin.
// Each cycle projects the graph, runs the algorithms, and drops the
// projection again.
type gdsEngine struct {
	client graph.Client
	logger *slog.Logger
}

// NewGDSEngine creates the plugin-backed engine.
func NewGDSEngine(client graph.Client, logger *slog.Logger) Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &gdsEngine{client: client, logger: logger}
}

func (e *gdsEngine) Name() string { return "gds" }

func (e *gdsEngine) Run(ctx context.Context) error {
	if err := e.dropProjectionIfExists(ctx); err != nil {
		return err
	}
	if err := e.createProjection(ctx); err != nil {
		return err
	}
	// Drop the projection even when an algorithm fails mid-cycle.
	defer func() {
		if err := e.dropProjectionIfExists(ctx); err != nil {
			e.logger.Warn("dropping gds projection failed", "error", err)
		}
	}()

	if err := e.runPageRank(ctx); err != nil {
		return err
	}
	if err := e.runBetweenness(ctx); err != nil {
		return err
	}
	if err := e.runLouvain(ctx); err != nil {
		return err
	}
	// Similarity needs enough overlapping neighborhoods; a sparse graph can
	// legitimately fail here without invalidating the centrality results.
	if err := e.runNodeSimilarity(ctx); err != nil {
		e.logger.Warn("node similarity skipped", "error", err)
	}
	return nil
}

func (e *gdsEngine) createProjection(ctx context.Context) error {
	cypher := `CALL gds.graph.project(
  $graphName,
  ['Person', 'Organization', 'Specialty', 'Skill', 'Workplace', 'Opportunity'],
  {
    CONNECTED_TO:   { orientation: 'UNDIRECTED' },
    SPECIALIZES_IN: { orientation: 'NATURAL' },
    WORKS_AT:       { orientation: 'NATURAL' },
    HAS_SKILL:      { orientation: 'NATURAL' },
    FOLLOWS:        { orientation: 'NATURAL' },
    ENDORSED:       { orientation: 'NATURAL' },
    POSTED:         { orientation: 'NATURAL' }
  }
)`
	if _, err := e.client.Write(ctx, cypher, map[string]any{"graphName": projectionName}); err != nil {
		return types.WrapError(types.ANALYTICS_RUN_FAILED, "creating graph projection", err)
	}
	e.logger.Debug("gds projection created", "graph", projectionName)
	return nil
}

func (e *gdsEngine) dropProjectionIfExists(ctx context.Context) error {
	records, err := e.client.Read(ctx,
		"CALL gds.graph.exists($graphName) YIELD exists RETURN exists",
		map[string]any{"graphName": projectionName})
	if err != nil {
		// Treat a failed existence check as "nothing to drop".
		return nil
	}
	if len(records) == 0 {
		return nil
	}
	if exists, ok := records[0]["exists"].(bool); !ok || !exists {
		return nil
	}
	if _, err := e.client.Write(ctx, "CALL gds.graph.drop($graphName)",
		map[string]any{"graphName": projectionName}); err != nil {
		return types.WrapError(types.ANALYTICS_RUN_FAILED, "dropping graph projection", err)
	}
	return nil
}

func (e *gdsEngine) runPageRank(ctx context.Context) error {
	cypher := `CALL gds.pageRank.write($graphName, {
  writeProperty: 'pageRank',
  maxIterations: 20,
  dampingFactor: 0.85,
  nodeLabels: ['Person']
})
YIELD nodePropertiesWritten, ranIterations`
	if _, err := e.client.Write(ctx, cypher, map[string]any{"graphName": projectionName}); err != nil {
		return types.WrapError(types.ANALYTICS_RUN_FAILED, "computing pageRank", err)
	}
	e.logger.Debug("pageRank computed")
	return nil
}

func (e *gdsEngine) runBetweenness(ctx context.Context) error {
	cypher := `CALL gds.betweenness.write($graphName, {
  writeProperty: 'betweenness',
  nodeLabels: ['Person']
})
YIELD nodePropertiesWritten`
	if _, err := e.client.Write(ctx, cypher, map[string]any{"graphName": projectionName}); err != nil {
		return types.WrapError(types.ANALYTICS_RUN_FAILED, "computing betweenness", err)
	}
	e.logger.Debug("betweenness computed")
	return nil
}

func (e *gdsEngine) runLouvain(ctx context.Context) error {
	cypher := `CALL gds.louvain.write($graphName, {
  writeProperty: 'communityId',
  nodeLabels: ['Person']
})
YIELD communityCount, modularity`
	if _, err := e.client.Write(ctx, cypher, map[string]any{"graphName": projectionName}); err != nil {
		return types.WrapError(types.ANALYTICS_RUN_FAILED, "detecting communities", err)
	}
	e.logger.Debug("communities detected")
	return nil
}

func (e *gdsEngine) runNodeSimilarity(ctx context.Context) error {
	// Replace the previous cycle's edges wholesale.
	if _, err := e.client.Write(ctx, "MATCH ()-[r:SIMILAR_TO]->() DELETE r", nil); err != nil {
		return types.WrapError(types.ANALYTICS_RUN_FAILED, "clearing similarity edges", err)
	}

	cypher := `CALL gds.nodeSimilarity.write($graphName, {
  writeRelationshipType: 'SIMILAR_TO',
  writeProperty: 'score',
  nodeLabels: ['Person'],
  topK: 10,
  similarityCutoff: 0.3
})
YIELD nodesCompared, relationshipsWritten`
	if _, err := e.client.Write(ctx, cypher, map[string]any{"graphName": projectionName}); err != nil {
		return types.WrapError(types.ANALYTICS_RUN_FAILED, "computing node similarity", err)
	}
	e.logger.Debug("node similarity computed")
	return nil
}
