package graph

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medconnect/graphd/internal/types"
)

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		URI:                     "bolt://localhost:7687",
		Username:                "neo4j",
		Password:                "password",
		ConnectionTimeout:       30 * time.Second,
		MaxTransactionRetryTime: 30 * time.Second,
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid config", func(c *Config) {}, false},
		{"empty URI", func(c *Config) { c.URI = "" }, true},
		{"empty username", func(c *Config) { c.Username = "" }, true},
		{"empty password", func(c *Config) { c.Password = "" }, true},
		{"zero connection timeout", func(c *Config) { c.ConnectionTimeout = 0 }, true},
		{"zero transaction retry time", func(c *Config) { c.MaxTransactionRetryTime = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				var coded *types.Error
				require.ErrorAs(t, err, &coded)
				assert.Equal(t, ErrCodeGraphInvalidConfig, coded.Code)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "bolt://localhost:7687", cfg.URI)
	assert.Equal(t, 50, cfg.MaxConnectionPoolSize)
}

func TestNewNeo4jClient_RejectsInvalidConfig(t *testing.T) {
	_, err := NewNeo4jClient(Config{}, nil)
	require.Error(t, err)
}

func TestMockClient_RecordsCallsAndScriptsResults(t *testing.T) {
	mock := NewMockClient()
	ctx := context.Background()

	mock.EnqueueReadResult([]Record{{"name": "Ana"}})

	records, err := mock.Read(ctx, "MATCH (p:Person) RETURN p.fullName AS name", nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Ana", records[0]["name"])

	// Queue exhausted: subsequent reads return empty, not an error.
	records, err = mock.Read(ctx, "MATCH (p:Person) RETURN p", nil)
	require.NoError(t, err)
	assert.Empty(t, records)

	assert.Len(t, mock.CallsFor("Read"), 2)
}

func TestMockClient_WriteBatchRecordsOperations(t *testing.T) {
	mock := NewMockClient()

	ops := []Operation{
		{Cypher: "MERGE (j:Opportunity {extId: $id})", Params: map[string]any{"id": "o1"}},
		{Cypher: "MATCH (o:Organization {extId: $orgId}) MATCH (j:Opportunity {extId: $id}) MERGE (o)-[:POSTED]->(j)",
			Params: map[string]any{"orgId": "org1", "id": "o1"}},
	}
	require.NoError(t, mock.WriteBatch(context.Background(), ops))

	calls := mock.CallsFor("WriteBatch")
	require.Len(t, calls, 1)
	assert.Len(t, calls[0].Ops, 2)
}
