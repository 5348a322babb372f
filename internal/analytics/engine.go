// Package analytics computes network-structure properties on the graph
// mirror: influence rank, bridge centrality, communities, and similarity
// edges. Results are written back onto Person nodes so the query surface
// reads plain properties instead of running algorithms per request.
package analytics

import "context"

// Engine computes one full analytics cycle. Implementations write pageRank,
// betweenness, communityId and SIMILAR_TO edges in place.
type Engine interface {
	// Name identifies the engine for logs.
	Name() string

	// Run executes one complete cycle.
	Run(ctx context.Context) error
}
