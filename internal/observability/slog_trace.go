package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// traceAttrs decorates every record with the ids of the span active on the
// context, which is what lets log lines join traces in the backend. Records
// logged outside any span pass through untouched.
type traceAttrs struct {
	slog.Handler
}

func (h traceAttrs) Handle(ctx context.Context, rec slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		rec.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return h.Handler.Handle(ctx, rec)
}

func (h traceAttrs) WithAttrs(attrs []slog.Attr) slog.Handler {
	return traceAttrs{Handler: h.Handler.WithAttrs(attrs)}
}

func (h traceAttrs) WithGroup(name string) slog.Handler {
	return traceAttrs{Handler: h.Handler.WithGroup(name)}
}
