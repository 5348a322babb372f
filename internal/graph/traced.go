package graph

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/medconnect/graphd/internal/types"
)

// TracedClient wraps a Client with OpenTelemetry tracing. Each operation gets
// a span carrying the access mode and result size.
//
// Thread-safety: safe for concurrent access (delegates to the inner client).
type TracedClient struct {
	inner  Client
	tracer trace.Tracer
}

// NewTracedClient wraps inner with tracing spans from the given tracer.
func NewTracedClient(inner Client, tracer trace.Tracer) *TracedClient {
	return &TracedClient{inner: inner, tracer: tracer}
}

func (t *TracedClient) Connect(ctx context.Context) error {
	ctx, span := t.tracer.Start(ctx, "graphd.graph.connect")
	defer span.End()
	err := t.inner.Connect(ctx)
	recordError(span, err)
	return err
}

func (t *TracedClient) Close(ctx context.Context) error {
	return t.inner.Close(ctx)
}

func (t *TracedClient) Health(ctx context.Context) types.HealthStatus {
	return t.inner.Health(ctx)
}

func (t *TracedClient) Read(ctx context.Context, cypher string, params map[string]any) ([]Record, error) {
	ctx, span := t.tracer.Start(ctx, "graphd.graph.read",
		trace.WithAttributes(attribute.String("graph.access_mode", "read")))
	defer span.End()

	records, err := t.inner.Read(ctx, cypher, params)
	span.SetAttributes(attribute.Int("graph.records", len(records)))
	recordError(span, err)
	return records, err
}

func (t *TracedClient) Write(ctx context.Context, cypher string, params map[string]any) ([]Record, error) {
	ctx, span := t.tracer.Start(ctx, "graphd.graph.write",
		trace.WithAttributes(attribute.String("graph.access_mode", "write")))
	defer span.End()

	records, err := t.inner.Write(ctx, cypher, params)
	recordError(span, err)
	return records, err
}

func (t *TracedClient) WriteBatch(ctx context.Context, ops []Operation) error {
	ctx, span := t.tracer.Start(ctx, "graphd.graph.write_batch",
		trace.WithAttributes(
			attribute.String("graph.access_mode", "write"),
			attribute.Int("graph.batch_size", len(ops)),
		))
	defer span.End()

	err := t.inner.WriteBatch(ctx, ops)
	recordError(span, err)
	return err
}

func recordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// Ensure TracedClient implements Client at compile time.
var _ Client = (*TracedClient)(nil)
