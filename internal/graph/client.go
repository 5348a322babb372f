package graph

import (
	"context"
	"time"

	"github.com/medconnect/graphd/internal/types"
)

// Record is a single result row with engine-specific values already
// normalized to plain Go types. Downstream components never see driver types.
type Record map[string]any

// Operation is one Cypher statement with parameters, used by WriteBatch.
type Operation struct {
	Cypher string
	Params map[string]any
}

// Client provides access to the graph database.
// Implementations must be safe for concurrent use; sessions are pooled by the
// underlying driver and acquired per call.
type Client interface {
	// Connect establishes a connection to the graph database.
	Connect(ctx context.Context) error

	// Close releases all resources and closes the database connection.
	Close(ctx context.Context) error

	// Health returns the current health status of the graph connection.
	Health(ctx context.Context) types.HealthStatus

	// Read executes a Cypher query in a read transaction and returns the rows.
	// Transient failures are retried with exponential backoff.
	Read(ctx context.Context, cypher string, params map[string]any) ([]Record, error)

	// Write executes a Cypher query in a write transaction and returns the rows.
	// Transient failures are retried; callers must therefore express writes as
	// idempotent merges, never blind creates.
	Write(ctx context.Context, cypher string, params map[string]any) ([]Record, error)

	// WriteBatch executes all operations in a single write transaction.
	// Either every operation is applied or none are.
	WriteBatch(ctx context.Context, ops []Operation) error
}

// Config contains configuration options for graph database clients.
type Config struct {
	// URI is the connection URI, e.g. "bolt://host:7687" or "neo4j+s://host".
	URI string `mapstructure:"uri" yaml:"uri" validate:"required"`

	// Username for authentication.
	Username string `mapstructure:"username" yaml:"username" validate:"required"`

	// Password for authentication.
	Password string `mapstructure:"password" yaml:"password" validate:"required"`

	// Database name to connect to. Empty string uses the default database.
	Database string `mapstructure:"database" yaml:"database"`

	// MaxConnectionPoolSize limits the number of pooled connections.
	// Zero or negative values use the driver default.
	MaxConnectionPoolSize int `mapstructure:"max_connection_pool_size" yaml:"max_connection_pool_size"`

	// ConnectionTimeout bounds session acquisition per attempt.
	ConnectionTimeout time.Duration `mapstructure:"connection_timeout" yaml:"connection_timeout"`

	// MaxTransactionRetryTime is the driver-level transaction retry ceiling.
	MaxTransactionRetryTime time.Duration `mapstructure:"max_transaction_retry_time" yaml:"max_transaction_retry_time"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		URI:                     "bolt://localhost:7687",
		Username:                "neo4j",
		Password:                "password",
		Database:                "",
		MaxConnectionPoolSize:   50,
		ConnectionTimeout:       30 * time.Second,
		MaxTransactionRetryTime: 30 * time.Second,
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.URI == "" {
		return types.NewError(ErrCodeGraphInvalidConfig, "URI cannot be empty")
	}
	if c.Username == "" {
		return types.NewError(ErrCodeGraphInvalidConfig, "Username cannot be empty")
	}
	if c.Password == "" {
		return types.NewError(ErrCodeGraphInvalidConfig, "Password cannot be empty")
	}
	if c.ConnectionTimeout <= 0 {
		return types.NewError(ErrCodeGraphInvalidConfig, "ConnectionTimeout must be positive")
	}
	if c.MaxTransactionRetryTime <= 0 {
		return types.NewError(ErrCodeGraphInvalidConfig, "MaxTransactionRetryTime must be positive")
	}
	return nil
}
