package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_JSONWritesToWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(FormatJSON, LevelInfo, &buf)
	logger.Debug("hidden")
	logger.Info("sync finished", "run_id", "r1")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line should be filtered at info level: %s", out)
	}
	if !strings.Contains(out, `"msg":"sync finished"`) || !strings.Contains(out, `"run_id":"r1"`) {
		t.Fatalf("unexpected json log line: %s", out)
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	if ParseFormat(" Console ") != FormatConsole {
		t.Fatalf("expected console format")
	}
	if ParseFormat("yaml") != FormatJSON {
		t.Fatalf("expected json fallback")
	}
}

func TestLogger_FieldsAndTrace(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.DebugLevel)
	logger := FromZap(zap.New(core)).With("mode", "incremental")

	traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	spanID, _ := trace.SpanIDFromHex("0102030405060708")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	logger.WarnContext(ctx, "page fetch failed", "page", 3, "error", errors.New("boom"), "dangling")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got=%d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["mode"] != "incremental" {
		t.Fatalf("missing bound field: %+v", fields)
	}
	if fields["page"] != int64(3) {
		t.Fatalf("unexpected page field: %#v", fields["page"])
	}
	if fields["error"] != "boom" {
		t.Fatalf("unexpected error field: %#v", fields["error"])
	}
	if _, ok := fields["dangling"]; !ok {
		t.Fatalf("odd trailing key should be kept: %+v", fields)
	}
	if fields["trace_id"] != traceID.String() || fields["span_id"] != spanID.String() {
		t.Fatalf("missing trace fields: %+v", fields)
	}
}

func TestDefault_NilSafe(t *testing.T) {
	var logger *Logger
	logger.Info("no panic")
	if err := logger.Sync(); err != nil {
		t.Fatalf("nil logger sync: %v", err)
	}
}
