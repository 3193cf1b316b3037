package httpapi

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/riskibarqy/baseball-stats/internal/platform/tracing"
)

const handlerSpanPrefix = "httpapi.Handler."

var apiTracer = otel.Tracer("baseball-stats/internal/interfaces/httpapi")

// startSpan records spans for Handler methods only; any other name gets the
// no-op span.
func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if !isHandlerSpan(name) {
		return ctx, tracing.Noop()
	}
	return tracing.StartChild(ctx, apiTracer, name, trace.WithSpanKind(trace.SpanKindInternal))
}

func isHandlerSpan(name string) bool {
	return strings.HasPrefix(name, handlerSpanPrefix) && len(name) > len(handlerSpanPrefix)
}
