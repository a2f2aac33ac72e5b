package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestNewWritesStructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Format: "json", Output: &buf})

	log.Debug(context.Background(), "visibility scan", Int("satellites", 3))

	out := buf.String()
	if !strings.Contains(out, `"msg":"visibility scan"`) {
		t.Errorf("output missing message: %s", out)
	}
	if !strings.Contains(out, `"satellites":3`) {
		t.Errorf("output missing attribute: %s", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Format: "text", Output: &buf})

	ctx := context.Background()
	log.Info(ctx, "dropped")
	log.Warn(ctx, "kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("info line should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "kept") {
		t.Errorf("warn line missing: %s", out)
	}
}

func TestWithAttachesFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Format: "json", Output: &buf}).With(String("component", "router"))

	log.Info(context.Background(), "ready")

	if !strings.Contains(buf.String(), `"component":"router"`) {
		t.Errorf("log line missing With field: %s", buf.String())
	}
}

func TestEnsureRequestID(t *testing.T) {
	ctx, id := EnsureRequestID(context.Background())
	if id == "" {
		t.Fatalf("expected a generated request_id")
	}

	ctx2, id2 := EnsureRequestID(ctx)
	if id2 != id {
		t.Errorf("EnsureRequestID regenerated: %q vs %q", id2, id)
	}
	if RequestIDFromContext(ctx2) != id {
		t.Errorf("request_id not stored in context")
	}
}

func TestWithRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Format: "json", Output: &buf})

	ctx := ContextWithRequestID(context.Background(), "abc123")
	ctx, log := WithRequestLogger(ctx, base)
	log.Info(ctx, "routed")

	if !strings.Contains(buf.String(), `"request_id":"abc123"`) {
		t.Errorf("log line missing request_id: %s", buf.String())
	}
}

func TestLoggerFromContext(t *testing.T) {
	if got := LoggerFromContext(context.Background()); got != nil {
		t.Errorf("LoggerFromContext on empty context = %v, want nil", got)
	}

	l := Noop()
	ctx := ContextWithLogger(context.Background(), l)
	if got := LoggerFromContext(ctx); got != l {
		t.Errorf("LoggerFromContext = %v, want the stored logger", got)
	}
}
