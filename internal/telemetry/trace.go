package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StartCommandSpan creates a span for a CLI command execution.
//
// Usage:
//
//	ctx, span := telemetry.StartCommandSpan(ctx, "plan")
//	defer span.End()
func StartCommandSpan(ctx context.Context, cmdName string) (context.Context, trace.Span) {
	ctx, span := tracer("commands").Start(ctx, "command."+cmdName)

	span.SetAttributes(
		attribute.String("command", cmdName),
		attribute.String("component", "cli"),
	)

	return ctx, span
}

// StartSearchSpan creates a span around one planner search operation
// (plan, replan, full_sched) tagged with the run id.
func StartSearchSpan(ctx context.Context, operation, runID string) (context.Context, trace.Span) {
	ctx, span := tracer("planner").Start(ctx, "planner."+operation)

	span.SetAttributes(
		attribute.String("operation", operation),
		attribute.String("run_id", runID),
		attribute.String("component", "planner"),
	)

	return ctx, span
}

// StartAdapterSpan creates a span for one output adapter notification.
func StartAdapterSpan(ctx context.Context, adapter string) (context.Context, trace.Span) {
	ctx, span := tracer("adapters").Start(ctx, "adapter.notify")

	span.SetAttributes(
		attribute.String("adapter", adapter),
		attribute.String("component", "adapter"),
	)

	return ctx, span
}

// RecordSuccess marks a span as successful with optional result attributes.
func RecordSuccess(span trace.Span, attrs ...attribute.KeyValue) {
	span.SetAttributes(attrs...)
	span.SetStatus(codes.Ok, "")
}

// RecordError records an error in a span and sets error status.
//
//	if err != nil {
//	    telemetry.RecordError(span, err)
//	    return err
//	}
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.Bool("error", true))
}

// RecordNoPlan marks a search span whose search space was exhausted.
// Exhaustion is an outcome rather than an error, so the span stays unset.
func RecordNoPlan(span trace.Span, decisions int) {
	span.SetAttributes(
		attribute.Bool("plan_found", false),
		attribute.Int("decisions", decisions),
	)
}

// RecordDuration records the duration of an operation as a span attribute.
func RecordDuration(span trace.Span, name string, duration time.Duration) {
	span.SetAttributes(attribute.Int64(name+"_ms", duration.Milliseconds()))
}

// RecordMetrics records integer counters as span attributes.
//
//	telemetry.RecordMetrics(span, map[string]int64{
//	    "instances": 4,
//	    "decisions": 37,
//	})
func RecordMetrics(span trace.Span, metrics map[string]int64) {
	for key, value := range metrics {
		span.SetAttributes(attribute.Int64(key, value))
	}
}
