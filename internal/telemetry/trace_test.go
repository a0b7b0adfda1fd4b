package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupTestTracer installs a provider exporting to memory as spans end.
func setupTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	p, err := InitProvider(context.Background(), DevelopmentConfig(), exporter)
	if err != nil {
		t.Fatalf("InitProvider failed: %v", err)
	}
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })

	return exporter
}

func onlySpan(t *testing.T, exporter *tracetest.InMemoryExporter) tracetest.SpanStub {
	t.Helper()
	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	return spans[0]
}

func attrValue(span tracetest.SpanStub, key string) (attribute.Value, bool) {
	for _, attr := range span.Attributes {
		if string(attr.Key) == key {
			return attr.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestStartCommandSpan(t *testing.T) {
	exporter := setupTestTracer(t)

	ctx := context.Background()
	spanCtx, span := StartCommandSpan(ctx, "plan")
	if spanCtx == ctx {
		t.Error("expected new context with span, got same context")
	}
	span.End()

	recorded := onlySpan(t, exporter)
	if recorded.Name != "command.plan" {
		t.Errorf("span name = %q, want %q", recorded.Name, "command.plan")
	}
	if v, ok := attrValue(recorded, "component"); !ok || v.AsString() != "cli" {
		t.Error("missing 'component' attribute")
	}
}

func TestStartSearchSpan(t *testing.T) {
	tests := []struct {
		operation string
		wantName  string
	}{
		{"plan", "planner.plan"},
		{"replan", "planner.replan"},
		{"full_sched", "planner.full_sched"},
	}

	for _, tt := range tests {
		t.Run(tt.operation, func(t *testing.T) {
			exporter := setupTestTracer(t)

			_, span := StartSearchSpan(context.Background(), tt.operation, "run-1")
			span.End()

			recorded := onlySpan(t, exporter)
			if recorded.Name != tt.wantName {
				t.Errorf("span name = %q, want %q", recorded.Name, tt.wantName)
			}
			if v, ok := attrValue(recorded, "run_id"); !ok || v.AsString() != "run-1" {
				t.Error("missing 'run_id' attribute")
			}
		})
	}
}

func TestStartAdapterSpan(t *testing.T) {
	exporter := setupTestTracer(t)

	_, span := StartAdapterSpan(context.Background(), "file")
	span.End()

	recorded := onlySpan(t, exporter)
	if v, ok := attrValue(recorded, "adapter"); !ok || v.AsString() != "file" {
		t.Error("missing 'adapter' attribute")
	}
}

func TestRecordSuccess(t *testing.T) {
	exporter := setupTestTracer(t)

	_, span := StartSearchSpan(context.Background(), "plan", "run-1")
	RecordSuccess(span, attribute.Int("instances", 3))
	span.End()

	recorded := onlySpan(t, exporter)
	if recorded.Status.Code != codes.Ok {
		t.Errorf("status code = %v, want %v", recorded.Status.Code, codes.Ok)
	}
	if v, ok := attrValue(recorded, "instances"); !ok || v.AsInt64() != 3 {
		t.Error("missing 'instances' attribute")
	}
}

func TestRecordError(t *testing.T) {
	exporter := setupTestTracer(t)

	_, span := StartCommandSpan(context.Background(), "plan")
	testErr := errors.New("problem file missing")
	RecordError(span, testErr)
	span.End()

	recorded := onlySpan(t, exporter)
	if recorded.Status.Code != codes.Error {
		t.Errorf("status code = %v, want %v", recorded.Status.Code, codes.Error)
	}
	if recorded.Status.Description != testErr.Error() {
		t.Errorf("status description = %q, want %q", recorded.Status.Description, testErr.Error())
	}
	if len(recorded.Events) == 0 {
		t.Error("expected error event, got none")
	}
}

func TestRecordErrorWithNil(t *testing.T) {
	exporter := setupTestTracer(t)

	_, span := StartCommandSpan(context.Background(), "plan")
	RecordError(span, nil)
	span.End()

	if onlySpan(t, exporter).Status.Code == codes.Error {
		t.Error("status should not be Error when error is nil")
	}
}

func TestRecordNoPlan(t *testing.T) {
	exporter := setupTestTracer(t)

	_, span := StartSearchSpan(context.Background(), "plan", "run-2")
	RecordNoPlan(span, 17)
	span.End()

	recorded := onlySpan(t, exporter)
	if recorded.Status.Code == codes.Error {
		t.Error("exhausted search must not be recorded as an error")
	}
	if v, ok := attrValue(recorded, "plan_found"); !ok || v.AsBool() {
		t.Error("plan_found should be false")
	}
	if v, ok := attrValue(recorded, "decisions"); !ok || v.AsInt64() != 17 {
		t.Error("missing 'decisions' attribute")
	}
}

func TestRecordDuration(t *testing.T) {
	exporter := setupTestTracer(t)

	_, span := StartSearchSpan(context.Background(), "full_sched", "run-3")
	RecordDuration(span, "search", 1500*time.Millisecond)
	span.End()

	if v, ok := attrValue(onlySpan(t, exporter), "search_ms"); !ok || v.AsInt64() != 1500 {
		t.Error("missing 'search_ms' attribute with correct value")
	}
}

func TestRecordMetrics(t *testing.T) {
	exporter := setupTestTracer(t)

	_, span := StartSearchSpan(context.Background(), "plan", "run-4")
	want := map[string]int64{
		"instances": 4,
		"decisions": 37,
		"threats":   2,
	}
	RecordMetrics(span, want)
	span.End()

	recorded := onlySpan(t, exporter)
	for key, expected := range want {
		if v, ok := attrValue(recorded, key); !ok || v.AsInt64() != expected {
			t.Errorf("missing or incorrect metric %q with value %d", key, expected)
		}
	}
}

func TestSpanNesting(t *testing.T) {
	exporter := setupTestTracer(t)

	ctx, parent := StartCommandSpan(context.Background(), "plan")
	_, child := StartSearchSpan(ctx, "plan", "run-5")
	child.End()
	parent.End()

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	childStub, parentStub := spans[0], spans[1]
	if childStub.Parent.SpanID() != parentStub.SpanContext.SpanID() {
		t.Error("search span should be a child of the command span")
	}
	if childStub.SpanContext.TraceID() != parentStub.SpanContext.TraceID() {
		t.Error("spans should share a trace id")
	}
}
