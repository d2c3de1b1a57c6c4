package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

func newBufferLogger(t *testing.T, level string) (*Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return New(&Config{Level: level, Format: "json", Writer: &buf}, "test-service"), &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("expected a log line, got nothing")
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("unmarshal %q: %v", line, err)
	}
	return m
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-service")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-service" {
		t.Errorf("expected service 'test-service', got %q", l.service)
	}
}

func TestConfigDefaultsAndValidate(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	if cfg.Level != "info" || cfg.Format != "console" || cfg.Output != "stderr" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}

	tests := []struct {
		name string
		cfg  Config
	}{
		{"bad level", Config{Level: "loud", Format: "json"}},
		{"bad format", Config{Level: "info", Format: "xml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	l, buf := newBufferLogger(t, "warn")
	l.Debug("hidden")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below warn, got %q", buf.String())
	}
	l.Warn("shown")
	m := decodeLine(t, buf)
	if m["message"] != "shown" || m["level"] != "warn" {
		t.Errorf("unexpected entry: %v", m)
	}
}

func TestWithComponentAndFields(t *testing.T) {
	l, buf := newBufferLogger(t, "debug")
	l.WithComponent("httpclient").WithFields(Fields("method", "GET")).Debug("sent", Fields(FieldAttempt, 1))

	m := decodeLine(t, buf)
	if m[FieldComponent] != "httpclient" {
		t.Errorf("component = %v", m[FieldComponent])
	}
	if m[FieldMethod] != "GET" {
		t.Errorf("method = %v", m[FieldMethod])
	}
	if m[FieldAttempt] != float64(1) {
		t.Errorf("attempt = %v", m[FieldAttempt])
	}
	if m["service"] != "test-service" {
		t.Errorf("service = %v", m["service"])
	}
}

func TestWithError(t *testing.T) {
	l, buf := newBufferLogger(t, "info")
	l.WithError(errors.New("boom")).Error("failed")
	m := decodeLine(t, buf)
	if m[FieldError] != "boom" {
		t.Errorf("error = %v", m[FieldError])
	}
}

func TestWithContext(t *testing.T) {
	l, buf := newBufferLogger(t, "info")

	if got := l.WithContext(context.Background()); got != l {
		t.Error("expected same logger for context without span")
	}

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
		SpanID:     trace.SpanID{1, 2, 3, 4, 5, 6, 7, 8},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	l.WithContext(ctx).Info("traced")

	m := decodeLine(t, buf)
	if m[FieldTraceID] != sc.TraceID().String() {
		t.Errorf("trace_id = %v", m[FieldTraceID])
	}
	if m[FieldSpanID] != sc.SpanID().String() {
		t.Errorf("span_id = %v", m[FieldSpanID])
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Error("nothing happens")
	l.WithComponent("x").Info("still nothing")
}

func TestFields(t *testing.T) {
	m := Fields("a", 1, "b", "two", 3, "skipped", "dangling")
	if len(m) != 2 || m["a"] != 1 || m["b"] != "two" {
		t.Errorf("unexpected fields: %v", m)
	}
	ef := ErrorFields("send", errors.New("x"))
	if ef[FieldOperation] != "send" || ef[FieldError] != "x" {
		t.Errorf("unexpected error fields: %v", ef)
	}
	df := DurationFields("execute", 1500*time.Millisecond)
	if df[FieldOperation] != "execute" || df[FieldDuration] != int64(1500) {
		t.Errorf("unexpected duration fields: %v", df)
	}
}

func TestFromZerolog(t *testing.T) {
	var buf bytes.Buffer
	l := FromZerolog(zerolog.New(&buf).Level(zerolog.WarnLevel))
	l.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info written below warn level: %q", buf.String())
	}
	l.Warn("kept", Fields("k", "v"))
	m := decodeLine(t, &buf)
	if m["message"] != "kept" || m["k"] != "v" {
		t.Errorf("unexpected line: %v", m)
	}
}

func TestGlobalLogger(t *testing.T) {
	orig := GetGlobalLogger()
	t.Cleanup(func() { SetGlobalLogger(orig) })

	l, buf := newBufferLogger(t, "info")
	SetGlobalLogger(l)
	WithComponent("global").Info("hello")
	m := decodeLine(t, buf)
	if m[FieldComponent] != "global" {
		t.Errorf("component = %v", m[FieldComponent])
	}
}
