package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/felixgeelhaar/plansched/internal/errors"
)

func newBufferLogger(buf *bytes.Buffer, level Level) *Logger {
	return New(Config{
		Level:  level,
		Format: FormatJSON,
		Output: buf,
	})
}

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, buf.String())
	}
	return entry
}

func TestConstructors(t *testing.T) {
	if cfg := Default().Config(); cfg.Level != LevelInfo || cfg.Format != FormatJSON {
		t.Errorf("Default config = %+v", cfg)
	}

	nop := Nop()
	if nop.Enabled(context.Background(), LevelWarn) {
		t.Error("Nop should only pass errors")
	}
	nop.Error("discarded")

	if New(Config{Level: LevelInfo}).Config().Output != nil {
		t.Error("New should keep a nil Output as configured")
	}
}

func TestLogLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, LevelWarn)

	logger.Debug("debug message")
	logger.Info("info message")
	if buf.Len() > 0 {
		t.Errorf("expected no output for debug/info at warn level, got: %s", buf.String())
	}

	logger.Warn("warn message")
	if buf.Len() == 0 {
		t.Error("expected output for warn message")
	}
}

func TestJSONFormatOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:       LevelInfo,
		Format:      FormatJSON,
		Output:      &buf,
		ServiceName: "plansched",
	})

	logger.Info("plan committed", "instances", 3, "goal", "deliver")

	entry := decodeEntry(t, &buf)
	if entry["msg"] != "plan committed" {
		t.Errorf("expected msg 'plan committed', got %v", entry["msg"])
	}
	if entry["instances"] != float64(3) {
		t.Errorf("expected instances 3, got %v", entry["instances"])
	}
	if entry["service"] != "plansched" {
		t.Errorf("expected service attribute, got %v", entry["service"])
	}
}

func TestTextFormatOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelInfo, Format: FormatText, Output: &buf})

	logger.Info("decision", "kind", "add_instance")

	output := buf.String()
	if !strings.Contains(output, "kind=add_instance") {
		t.Errorf("expected output to contain 'kind=add_instance', got: %s", output)
	}
}

func TestWithComponentAndContext(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, LevelDebug)

	ctx := ContextWithRunID(context.Background(), "run-42")
	logger.WithComponent("scheduler").WithContext(ctx).Debug("propagated")

	entry := decodeEntry(t, &buf)
	if entry["component"] != "scheduler" {
		t.Errorf("expected component 'scheduler', got %v", entry["component"])
	}
	if entry["run_id"] != "run-42" {
		t.Errorf("expected run_id 'run-42', got %v", entry["run_id"])
	}

	buf.Reset()
	logger.WithContext(context.Background()).Info("no run")
	if _, ok := decodeEntry(t, &buf)["run_id"]; ok {
		t.Error("run_id should be absent without a run in context")
	}
}

func TestWithError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"planner error", errors.NewInvalidCommandError(2, 3), "CMD-001"},
		{"wrapped planner error", fmt.Errorf("undo: %w", errors.NewInvalidCommandError(2, 3)), "CMD-001"},
		{"plain error", fmt.Errorf("boom"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			newBufferLogger(&buf, LevelInfo).WithError(tt.err).Info("failed")

			entry := decodeEntry(t, &buf)
			code, _ := entry["error_code"].(string)
			if code != tt.wantCode {
				t.Errorf("error_code = %q, want %q", code, tt.wantCode)
			}
			if _, ok := entry["error"]; !ok {
				t.Error("expected error attribute")
			}
		})
	}

	logger := Nop()
	if logger.WithError(nil) != logger {
		t.Error("WithError(nil) should return the same logger")
	}
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, LevelInfo)

	err := errors.Wrap(errors.ErrCodeProblemInvalid, "bad problem", fmt.Errorf("dup task 3")).
		WithSuggestion("Remove the duplicate").
		WithDocs("https://github.com/felixgeelhaar/plansched#problem-files")
	logger.LogError(err)

	entry := decodeEntry(t, &buf)
	if entry["error_code"] != "PROBLEM-002" {
		t.Errorf("expected error_code PROBLEM-002, got %v", entry["error_code"])
	}
	if entry["error_message"] != "bad problem" {
		t.Errorf("expected error_message, got %v", entry["error_message"])
	}
	if entry["cause"] != "dup task 3" {
		t.Errorf("expected cause, got %v", entry["cause"])
	}
	if _, ok := entry["suggestions"]; !ok {
		t.Error("expected suggestions")
	}
	if _, ok := entry["docs_url"]; !ok {
		t.Error("expected docs_url")
	}

	buf.Reset()
	logger.LogError(nil)
	if buf.Len() != 0 {
		t.Error("LogError(nil) should not log")
	}
}

func TestEnabled(t *testing.T) {
	logger := New(Config{Level: LevelWarn, Output: &bytes.Buffer{}})
	if logger.Enabled(context.Background(), LevelInfo) {
		t.Error("info should be disabled at warn level")
	}
	if !logger.Enabled(context.Background(), LevelError) {
		t.Error("error should be enabled at warn level")
	}
}

func TestDefaultLogger(t *testing.T) {
	original := defaultLogger.Load()
	originalSlog := slog.Default()
	defer func() {
		defaultLogger.Store(original)
		slog.SetDefault(originalSlog)
	}()

	defaultLogger.Store(nil)
	if DefaultLogger() == nil {
		t.Fatal("DefaultLogger returned nil when no default was set")
	}

	var buf bytes.Buffer
	custom := newBufferLogger(&buf, LevelInfo)
	SetDefaultLogger(custom)
	if DefaultLogger() != custom {
		t.Error("DefaultLogger did not return the custom logger")
	}

	slog.Info("through slog")
	if decodeEntry(t, &buf)["msg"] != "through slog" {
		t.Error("slog default should write through the installed logger")
	}
}
