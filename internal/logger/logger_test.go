package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("bad json line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestBuild_StaticFieldsAndNames(t *testing.T) {
	var buf bytes.Buffer
	zl := Build(Config{Level: "info", Scenario: "cache", Component: "explorer"}, &buf)
	zl.Info().Msg("hello")

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("lines=%d want 1", len(lines))
	}
	l := lines[0]
	if l["msg"] != "hello" || l["scenario"] != "cache" || l["component"] != "explorer" {
		t.Fatalf("unexpected fields: %v", l)
	}
	if _, ok := l["timestamp"]; !ok {
		t.Fatalf("missing timestamp: %v", l)
	}
}

func TestSlog_ContextFieldsAndLevel(t *testing.T) {
	var buf bytes.Buffer
	zl := Build(Config{Level: "info"}, &buf)
	sl := NewSlog(&zl)

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithQueryKey(ctx, "q:abc")
	ctx = WithCacheTier(ctx, "local")

	sl.DebugContext(ctx, "dropped")
	sl.InfoContext(ctx, "served", "points", 3, "err", errors.New("x"))

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("debug must be filtered at info level; got %d lines", len(lines))
	}
	l := lines[0]
	if l["request_id"] != "req-1" || l["query_key"] != "q:abc" || l["cache_tier"] != "local" {
		t.Fatalf("context fields missing: %v", l)
	}
	if l["points"] != float64(3) || l["err"] != "x" {
		t.Fatalf("attrs missing: %v", l)
	}
}

func TestWithRequestID_GeneratesWhenEmpty(t *testing.T) {
	ctx := WithRequestID(context.Background(), "")
	if id := RequestID(ctx); len(id) != 16 {
		t.Fatalf("generated id=%q want 16 hex chars", id)
	}
}
