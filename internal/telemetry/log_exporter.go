package telemetry

import (
	"context"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/felixgeelhaar/plansched/internal/log"
)

// LogExporter writes finished spans to a logger at debug level. It lets the
// CLI show search timings without a collector.
type LogExporter struct {
	log *log.Logger
}

// NewLogExporter creates a LogExporter writing to l.
func NewLogExporter(l *log.Logger) *LogExporter {
	return &LogExporter{log: l.WithComponent("trace")}
}

// ExportSpans implements sdktrace.SpanExporter.
func (e *LogExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, s := range spans {
		args := []any{
			"span", s.Name(),
			"trace_id", s.SpanContext().TraceID().String(),
			"duration", s.EndTime().Sub(s.StartTime()),
			"status", s.Status().Code.String(),
		}
		for _, kv := range s.Attributes() {
			args = append(args, string(kv.Key), kv.Value.Emit())
		}
		e.log.DebugContext(ctx, "span finished", args...)
	}
	return nil
}

// Shutdown implements sdktrace.SpanExporter.
func (e *LogExporter) Shutdown(context.Context) error { return nil }

var _ sdktrace.SpanExporter = (*LogExporter)(nil)
