package graph

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/medconnect/graphd/internal/types"
)

// Neo4jClient implements Client for Neo4j graph databases.
// It provides pooled sessions, access-mode routing, and automatic retry of
// transiently-classified failures.
type Neo4jClient struct {
	config Config
	driver neo4j.DriverWithContext
	retry  retryPolicy
	logger *slog.Logger
}

// NewNeo4jClient creates a new Neo4j client with the given configuration.
// The client must be connected via Connect() before use.
func NewNeo4jClient(config Config, logger *slog.Logger) (*Neo4jClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Neo4jClient{
		config: config,
		retry:  defaultRetryPolicy(),
		logger: logger,
	}, nil
}

// Connect establishes a connection to the Neo4j database.
// Uses exponential backoff for connection retries.
func (c *Neo4jClient) Connect(ctx context.Context) error {
	auth := neo4j.BasicAuth(c.config.Username, c.config.Password, "")

	driverConfig := func(config *neo4j.Config) {
		config.MaxConnectionPoolSize = c.config.MaxConnectionPoolSize
		config.ConnectionAcquisitionTimeout = c.config.ConnectionTimeout
		config.MaxTransactionRetryTime = c.config.MaxTransactionRetryTime
		// Encryption is controlled by the URI scheme (bolt:// vs bolt+s://).
	}

	var driver neo4j.DriverWithContext
	var lastErr error
	maxRetries := 5
	baseDelay := 100 * time.Millisecond

	for attempt := 0; attempt < maxRetries; attempt++ {
		var err error
		driver, err = neo4j.NewDriverWithContext(c.config.URI, auth, driverConfig)
		if err == nil {
			err = driver.VerifyConnectivity(ctx)
			if err == nil {
				c.driver = driver
				c.logger.Info("graph connection established", "uri", c.config.URI)
				return nil
			}
		}

		lastErr = err

		if ctx.Err() != nil {
			return types.WrapError(ErrCodeGraphConnectionFailed,
				"connection attempt cancelled", ctx.Err())
		}

		delay := baseDelay * time.Duration(math.Pow(2, float64(attempt)))
		if delay > c.config.ConnectionTimeout {
			delay = c.config.ConnectionTimeout
		}

		select {
		case <-time.After(delay):
			continue
		case <-ctx.Done():
			return types.WrapError(ErrCodeGraphConnectionFailed,
				"connection attempt cancelled", ctx.Err())
		}
	}

	return types.WrapError(ErrCodeGraphConnectionFailed,
		fmt.Sprintf("failed to connect after %d attempts", maxRetries), lastErr)
}

// Close releases all resources and closes the database connection.
func (c *Neo4jClient) Close(ctx context.Context) error {
	if c.driver == nil {
		return nil
	}
	if err := c.driver.Close(ctx); err != nil {
		return types.WrapError(ErrCodeGraphConnectionClosed,
			"failed to close driver", err)
	}
	c.driver = nil
	return nil
}

// Health returns the current health status of the Neo4j connection.
func (c *Neo4jClient) Health(ctx context.Context) types.HealthStatus {
	if c.driver == nil {
		return types.Unhealthy("driver not initialized")
	}

	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := c.driver.VerifyConnectivity(healthCtx); err != nil {
		return types.Unhealthy(fmt.Sprintf("connectivity check failed: %v", err))
	}
	return types.Healthy("connected to Neo4j")
}

// Read executes a Cypher query in a read transaction.
// Each attempt acquires a fresh session so an expired session is never reused.
func (c *Neo4jClient) Read(ctx context.Context, cypher string, params map[string]any) ([]Record, error) {
	if c.driver == nil {
		return nil, types.NewError(ErrCodeGraphConnectionClosed, "driver not connected")
	}

	var records []Record
	err := c.retry.Do(ctx, func() error {
		session := c.newSession(ctx, neo4j.AccessModeRead)
		defer session.Close(ctx)

		result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			return runAndCollect(ctx, tx, cypher, params)
		})
		if err != nil {
			return err
		}
		records = result.([]Record)
		return nil
	})
	if err != nil {
		return nil, types.WrapError(ErrCodeGraphQueryFailed, "read query failed", err)
	}
	return records, nil
}

// Write executes a Cypher query in a write transaction.
func (c *Neo4jClient) Write(ctx context.Context, cypher string, params map[string]any) ([]Record, error) {
	if c.driver == nil {
		return nil, types.NewError(ErrCodeGraphConnectionClosed, "driver not connected")
	}

	var records []Record
	err := c.retry.Do(ctx, func() error {
		session := c.newSession(ctx, neo4j.AccessModeWrite)
		defer session.Close(ctx)

		result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			return runAndCollect(ctx, tx, cypher, params)
		})
		if err != nil {
			return err
		}
		records = result.([]Record)
		return nil
	})
	if err != nil {
		return nil, types.WrapError(ErrCodeGraphWriteFailed, "write query failed", err)
	}
	return records, nil
}

// WriteBatch executes all operations inside one write transaction so
// multi-step merges (node plus relationship) apply atomically or not at all.
func (c *Neo4jClient) WriteBatch(ctx context.Context, ops []Operation) error {
	if c.driver == nil {
		return types.NewError(ErrCodeGraphConnectionClosed, "driver not connected")
	}
	if len(ops) == 0 {
		return nil
	}

	err := c.retry.Do(ctx, func() error {
		session := c.newSession(ctx, neo4j.AccessModeWrite)
		defer session.Close(ctx)

		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			for _, op := range ops {
				result, err := tx.Run(ctx, op.Cypher, op.Params)
				if err != nil {
					return nil, err
				}
				if _, err := result.Consume(ctx); err != nil {
					return nil, err
				}
			}
			return nil, nil
		})
		return err
	})
	if err != nil {
		return types.WrapError(ErrCodeGraphBatchWriteFailed,
			fmt.Sprintf("batch of %d operations failed", len(ops)), err)
	}
	return nil
}

func (c *Neo4jClient) newSession(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return c.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: c.config.Database,
		AccessMode:   mode,
	})
}

// runAndCollect executes the statement and converts the driver records into
// normalized Records.
func runAndCollect(ctx context.Context, tx neo4j.ManagedTransaction, cypher string, params map[string]any) ([]Record, error) {
	result, err := tx.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	raw, err := result.Collect(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(raw))
	for _, rec := range raw {
		row := make(Record, len(rec.Keys))
		for i, key := range rec.Keys {
			row[key] = Normalize(rec.Values[i])
		}
		records = append(records, row)
	}
	return records, nil
}

// Ensure Neo4jClient implements Client at compile time.
var _ Client = (*Neo4jClient)(nil)
