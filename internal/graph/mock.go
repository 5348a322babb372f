package graph

import (
	"context"
	"sync"
	"time"

	"github.com/medconnect/graphd/internal/types"
)

// MockCall records one method invocation on the mock client.
type MockCall struct {
	Method    string
	Cypher    string
	Params    map[string]any
	Ops       []Operation
	Timestamp time.Time
}

// MockClient is an in-memory Client for testing. It records every call for
// verification and returns scripted results and errors.
type MockClient struct {
	mu sync.RWMutex

	connected    bool
	healthStatus types.HealthStatus
	calls        []MockCall

	// Scripted responses. readResults is consumed one slice per Read call;
	// when exhausted, Read returns an empty result set.
	readResults [][]Record
	readErr     error
	writeErr    error
	batchErr    error
	connectErr  error
	closeErr    error

	// readHandler, when set, takes precedence over the scripted queue.
	readHandler func(cypher string, params map[string]any) ([]Record, error)
}

// NewMockClient creates a new mock graph client for testing.
func NewMockClient() *MockClient {
	return &MockClient{
		healthStatus: types.Healthy("mock graph client"),
	}
}

// EnqueueReadResult scripts the result of the next unscripted Read call.
func (m *MockClient) EnqueueReadResult(records []Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readResults = append(m.readResults, records)
}

// SetReadHandler routes Read calls through fn instead of the scripted queue.
func (m *MockClient) SetReadHandler(fn func(cypher string, params map[string]any) ([]Record, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readHandler = fn
}

// SetReadError makes every Read call fail with err.
func (m *MockClient) SetReadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErr = err
}

// SetWriteError makes every Write call fail with err.
func (m *MockClient) SetWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// SetBatchError makes every WriteBatch call fail with err.
func (m *MockClient) SetBatchError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchErr = err
}

// Calls returns a copy of all recorded calls.
func (m *MockClient) Calls() []MockCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallsFor returns recorded calls for the given method name.
func (m *MockClient) CallsFor(method string) []MockCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []MockCall
	for _, c := range m.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Reset clears recorded calls and scripted results.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.readResults = nil
	m.readHandler = nil
	m.readErr = nil
	m.writeErr = nil
	m.batchErr = nil
}

func (m *MockClient) record(call MockCall) {
	call.Timestamp = time.Now()
	m.calls = append(m.calls, call)
}

// Connect records the call and simulates connection.
func (m *MockClient) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(MockCall{Method: "Connect"})
	if m.connectErr != nil {
		return m.connectErr
	}
	m.connected = true
	return nil
}

// Close records the call and simulates disconnection.
func (m *MockClient) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(MockCall{Method: "Close"})
	m.connected = false
	return m.closeErr
}

// Health returns the configured health status.
func (m *MockClient) Health(ctx context.Context) types.HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.healthStatus
}

// Read records the call and returns the next scripted result.
func (m *MockClient) Read(ctx context.Context, cypher string, params map[string]any) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(MockCall{Method: "Read", Cypher: cypher, Params: params})
	if m.readErr != nil {
		return nil, m.readErr
	}
	if m.readHandler != nil {
		return m.readHandler(cypher, params)
	}
	if len(m.readResults) > 0 {
		result := m.readResults[0]
		m.readResults = m.readResults[1:]
		return result, nil
	}
	return []Record{}, nil
}

// Write records the call.
func (m *MockClient) Write(ctx context.Context, cypher string, params map[string]any) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(MockCall{Method: "Write", Cypher: cypher, Params: params})
	if m.writeErr != nil {
		return nil, m.writeErr
	}
	return []Record{}, nil
}

// WriteBatch records the call with its operations.
func (m *MockClient) WriteBatch(ctx context.Context, ops []Operation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(MockCall{Method: "WriteBatch", Ops: ops})
	return m.batchErr
}

// Ensure MockClient implements Client at compile time.
var _ Client = (*MockClient)(nil)
