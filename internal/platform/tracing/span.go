// Package tracing holds the span helpers shared by the HTTP and usecase
// layers.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

var noopSpan = trace.SpanFromContext(context.Background())

// StartChild starts a span only when ctx already carries a valid parent.
// Requests the HTTP filter skipped (health checks) and background calls with a
// bare context therefore never produce orphan root spans.
func StartChild(ctx context.Context, tracer trace.Tracer, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if name == "" || tracer == nil {
		return ctx, noopSpan
	}
	if !trace.SpanFromContext(ctx).SpanContext().IsValid() {
		return ctx, noopSpan
	}
	return tracer.Start(ctx, name, opts...)
}

// Noop returns the shared non-recording span.
func Noop() trace.Span {
	return noopSpan
}
