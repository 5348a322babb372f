package graph

import (
	"context"
	"log/slog"
)

// SchemaManager ensures constraints and indexes exist before the synchronizer
// starts mirroring writes. Every statement is idempotent (IF NOT EXISTS);
// individual failures are logged and skipped so a partially-supported server
// still comes up.
type SchemaManager struct {
	client Client
	logger *slog.Logger
}

// NewSchemaManager creates a SchemaManager backed by the given client.
func NewSchemaManager(client Client, logger *slog.Logger) *SchemaManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &SchemaManager{client: client, logger: logger}
}

// EnsureSchema creates constraints, indexes, and full-text indexes.
func (m *SchemaManager) EnsureSchema(ctx context.Context) error {
	m.ensureAll(ctx, "constraint", constraints)
	m.ensureAll(ctx, "index", indexes)
	m.ensureAll(ctx, "full-text index", fullTextIndexes)
	return nil
}

func (m *SchemaManager) ensureAll(ctx context.Context, kind string, statements []string) {
	applied := 0
	for _, stmt := range statements {
		if _, err := m.client.Write(ctx, stmt, nil); err != nil {
			m.logger.Debug("schema statement skipped", "kind", kind, "error", err)
			continue
		}
		applied++
	}
	m.logger.Info("graph schema ensured", "kind", kind, "applied", applied, "total", len(statements))
}

// Unique external-id constraints guarantee the synchronizer can never create
// duplicate nodes for the same relational record.
var constraints = []string{
	"CREATE CONSTRAINT person_extid IF NOT EXISTS FOR (p:Person) REQUIRE p.extId IS UNIQUE",
	"CREATE CONSTRAINT organization_extid IF NOT EXISTS FOR (o:Organization) REQUIRE o.extId IS UNIQUE",
	"CREATE CONSTRAINT specialty_extid IF NOT EXISTS FOR (s:Specialty) REQUIRE s.extId IS UNIQUE",
	"CREATE CONSTRAINT skill_extid IF NOT EXISTS FOR (s:Skill) REQUIRE s.extId IS UNIQUE",
	"CREATE CONSTRAINT workplace_extid IF NOT EXISTS FOR (w:Workplace) REQUIRE w.extId IS UNIQUE",
	"CREATE CONSTRAINT opportunity_extid IF NOT EXISTS FOR (j:Opportunity) REQUIRE j.extId IS UNIQUE",
	"CREATE CONSTRAINT city_name IF NOT EXISTS FOR (c:City) REQUIRE c.name IS UNIQUE",
	"CREATE CONSTRAINT state_code IF NOT EXISTS FOR (s:State) REQUIRE s.code IS UNIQUE",
}

var indexes = []string{
	"CREATE INDEX person_fullname IF NOT EXISTS FOR (p:Person) ON (p.fullName)",
	"CREATE INDEX person_city_state IF NOT EXISTS FOR (p:Person) ON (p.city, p.state)",
	"CREATE INDEX organization_name IF NOT EXISTS FOR (o:Organization) ON (o.name)",
	"CREATE INDEX specialty_name IF NOT EXISTS FOR (s:Specialty) ON (s.name)",
	"CREATE INDEX skill_name IF NOT EXISTS FOR (s:Skill) ON (s.name)",
	"CREATE INDEX opportunity_active IF NOT EXISTS FOR (j:Opportunity) ON (j.isActive)",
	// Rank property indexes allow fast ORDER BY on computed scores.
	"CREATE INDEX person_pagerank IF NOT EXISTS FOR (p:Person) ON (p.pageRank)",
	"CREATE INDEX person_betweenness IF NOT EXISTS FOR (p:Person) ON (p.betweenness)",
	"CREATE INDEX person_community IF NOT EXISTS FOR (p:Person) ON (p.communityId)",
}

// Full-text indexes power the fuzzy name search surface.
var fullTextIndexes = []string{
	"CREATE FULLTEXT INDEX person_fulltext IF NOT EXISTS FOR (p:Person) ON EACH [p.fullName]",
	"CREATE FULLTEXT INDEX organization_fulltext IF NOT EXISTS FOR (o:Organization) ON EACH [o.name]",
	"CREATE FULLTEXT INDEX opportunity_fulltext IF NOT EXISTS FOR (j:Opportunity) ON EACH [j.title]",
	"CREATE FULLTEXT INDEX skill_fulltext IF NOT EXISTS FOR (s:Skill) ON EACH [s.name]",
}
