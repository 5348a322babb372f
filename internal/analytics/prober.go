package analytics

import (
	"context"
	"log/slog"

	"github.com/medconnect/graphd/internal/graph"
)

// Prober checks whether the Graph Data Science plugin is installed on the
// connected server.
type Prober struct {
	client graph.Client
	logger *slog.Logger
}

// NewProber creates a plugin prober.
func NewProber(client graph.Client, logger *slog.Logger) *Prober {
	if logger == nil {
		logger = slog.Default()
	}
	return &Prober{client: client, logger: logger}
}

// Available reports whether the GDS plugin answers. Any failure, including an
// unreachable server, reads as unavailable; the caller falls back to the
// plain-Cypher engine.
func (p *Prober) Available(ctx context.Context) bool {
	_, err := p.client.Read(ctx, "RETURN gds.version() AS version", nil)
	if err != nil {
		p.logger.Warn("gds plugin not available, using fallback algorithms", "error", err)
		return false
	}
	p.logger.Debug("gds plugin detected")
	return true
}
