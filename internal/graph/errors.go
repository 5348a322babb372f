package graph

import "github.com/medconnect/graphd/internal/types"

// Graph database error codes
const (
	// Connection errors
	ErrCodeGraphConnectionFailed types.ErrorCode = "GRAPH_CONNECTION_FAILED"
	ErrCodeGraphConnectionClosed types.ErrorCode = "GRAPH_CONNECTION_CLOSED"

	// Configuration errors
	ErrCodeGraphInvalidConfig types.ErrorCode = "GRAPH_INVALID_CONFIG"

	// Query errors
	ErrCodeGraphQueryFailed      types.ErrorCode = "GRAPH_QUERY_FAILED"
	ErrCodeGraphWriteFailed      types.ErrorCode = "GRAPH_WRITE_FAILED"
	ErrCodeGraphBatchWriteFailed types.ErrorCode = "GRAPH_BATCH_WRITE_FAILED"
	ErrCodeGraphRetryExhausted   types.ErrorCode = "GRAPH_RETRY_EXHAUSTED"

	// Schema errors
	ErrCodeGraphSchemaFailed types.ErrorCode = "GRAPH_SCHEMA_FAILED"
)
