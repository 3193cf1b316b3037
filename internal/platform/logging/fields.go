package logging

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// badKey labels a value that has no string key in front of it.
const badKey = "!BADKEY"

// fields turns alternating key/value args into zap fields. zap.Field values
// are passed through as they are and errors are logged with their message.
func fields(args []any) []zap.Field {
	if len(args) == 0 {
		return nil
	}

	out := make([]zap.Field, 0, len(args)/2+3)
	for len(args) > 0 {
		if f, ok := args[0].(zap.Field); ok {
			out = append(out, f)
			args = args[1:]
			continue
		}

		key, ok := args[0].(string)
		if !ok || len(args) == 1 {
			out = append(out, zap.Any(badKey, args[0]))
			args = args[1:]
			continue
		}

		if err, isErr := args[1].(error); isErr {
			out = append(out, zap.NamedError(key, err))
		} else {
			out = append(out, zap.Any(key, args[1]))
		}
		args = args[2:]
	}
	return out
}

func traceFields(ctx context.Context) []zap.Field {
	if ctx == nil {
		return nil
	}
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return nil
	}
	return []zap.Field{
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	}
}
