package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func newBufferLogger(t *testing.T, service string) (*Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	cfg := &Config{Level: "debug", Format: FormatJSON}
	return NewWithWriter(cfg, service, &buf), &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	if i := strings.LastIndex(line, "\n"); i >= 0 {
		line = line[i+1:]
	}
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(line), &out); err != nil {
		t.Fatalf("failed to decode log line %q: %v", line, err)
	}
	return out
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestNewInvalidLevel(t *testing.T) {
	l := New(&Config{Level: "invalid-level", Format: FormatJSON}, "test")
	if l == nil {
		t.Fatal("expected logger to be created even with invalid level")
	}
}

func TestJSONOutput_ServiceAndComponent(t *testing.T) {
	l, buf := newBufferLogger(t, "govkit")
	l.WithComponent("regsync").Info("batch merged", Fields(FieldCategory, "providers", FieldBatchSize, 3))

	got := decodeLine(t, buf)
	if got["message"] != "batch merged" {
		t.Errorf("message = %v", got["message"])
	}
	if got[FieldService] != "govkit" {
		t.Errorf("service = %v, want govkit", got[FieldService])
	}
	if got[FieldComponent] != "regsync" {
		t.Errorf("component = %v, want regsync", got[FieldComponent])
	}
	if got[FieldCategory] != "providers" {
		t.Errorf("category = %v, want providers", got[FieldCategory])
	}
	if got[FieldBatchSize] != float64(3) {
		t.Errorf("batch_size = %v, want 3", got[FieldBatchSize])
	}
}

func TestWithContext(t *testing.T) {
	l, buf := newBufferLogger(t, "svc")
	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithTraceID(ctx, "trace-1")

	l.WithContext(ctx).Warn("slow")

	got := decodeLine(t, buf)
	if got[FieldRequestID] != "req-1" {
		t.Errorf("request_id = %v", got[FieldRequestID])
	}
	if got[FieldTraceID] != "trace-1" {
		t.Errorf("trace_id = %v", got[FieldTraceID])
	}
	if RequestIDFromContext(ctx) != "req-1" {
		t.Error("RequestIDFromContext should return the stored id")
	}
}

func TestWithError(t *testing.T) {
	l, buf := newBufferLogger(t, "svc")
	l.WithError(errors.New("boom")).Error("failed")

	got := decodeLine(t, buf)
	if got["error"] != "boom" {
		t.Errorf("error = %v, want boom", got["error"])
	}
	if got["level"] != "error" {
		t.Errorf("level = %v, want error", got["level"])
	}
}

func TestWithFields(t *testing.T) {
	l, buf := newBufferLogger(t, "svc")
	l.WithFields(map[string]interface{}{"k": "v"}).Debug("hello")

	if got := decodeLine(t, buf); got["k"] != "v" {
		t.Errorf("k = %v, want v", got["k"])
	}
}

func TestNop(t *testing.T) {
	// Must not panic.
	Nop().WithComponent("x").Info("ignored", Fields("a", 1))
}

func TestSetGlobalLogger(t *testing.T) {
	prev := globalLogger
	defer SetGlobalLogger(prev)

	l, buf := newBufferLogger(t, "global")
	SetGlobalLogger(l)
	Info("via package")

	if got := decodeLine(t, buf); got["message"] != "via package" {
		t.Errorf("message = %v", got["message"])
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Level != "info" {
		t.Errorf("expected level 'info', got %q", cfg.Level)
	}
	if cfg.Format != FormatConsole {
		t.Errorf("expected format 'console', got %q", cfg.Format)
	}
	if cfg.Output != "stdout" {
		t.Errorf("expected output 'stdout', got %q", cfg.Output)
	}
	if !cfg.Timestamp {
		t.Error("expected timestamp to be enabled")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "info", Format: "json"}, false},
		{"pretty", Config{Level: "debug", Format: "pretty"}, false},
		{"bad level", Config{Level: "loud", Format: "json"}, true},
		{"bad format", Config{Level: "info", Format: "xml"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRegisterAndGet(t *testing.T) {
	l := NewDefault("named")
	Register("registry.memory", l)
	if Get("registry.memory") != l {
		t.Error("expected registered logger")
	}
	if Get("never-registered") == nil {
		t.Error("expected fallback logger")
	}
}

func TestRegisterComponents(t *testing.T) {
	base, buf := newBufferLogger(t, "svc")
	RegisterComponents(base, "events.kafka")
	Get("events.kafka").Info("sent")

	if got := decodeLine(t, buf); got[FieldComponent] != "events.kafka" {
		t.Errorf("component = %v, want events.kafka", got[FieldComponent])
	}
}

func TestFields(t *testing.T) {
	m := Fields("a", 1, "b", "two", 3, "ignored-key-not-string", "dangling")
	if m["a"] != 1 || m["b"] != "two" {
		t.Errorf("unexpected fields: %v", m)
	}
	if len(m) != 2 {
		t.Errorf("expected 2 fields, got %d", len(m))
	}
}

func TestErrorAndDurationFields(t *testing.T) {
	ef := ErrorFields("subscribe", errors.New("refused"))
	if ef[FieldOperation] != "subscribe" || ef[FieldError] != "refused" {
		t.Errorf("ErrorFields = %v", ef)
	}
	df := DurationFields("merge", 1500*time.Millisecond)
	if df[FieldDuration] != int64(1500) {
		t.Errorf("DurationFields = %v", df)
	}
}

func TestLevelTag(t *testing.T) {
	if got := levelTag("info", true); got != "[INF]" {
		t.Errorf("levelTag(info) = %q", got)
	}
	if got := levelTag("custom", true); got != "[CUSTOM]" {
		t.Errorf("levelTag(custom) = %q", got)
	}
}
