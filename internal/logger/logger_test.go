package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, LevelWarn, "aptos-dex", nil)

	log.Info(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered, got %s", buf.String())
	}

	log.Warn(context.Background(), "shown", "symbol", "APT")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid json record: %v", err)
	}
	if rec["msg"] != "shown" {
		t.Errorf("expected msg=shown, got %v", rec["msg"])
	}
	if rec["service"] != "aptos-dex" {
		t.Errorf("expected service attr, got %v", rec["service"])
	}
	if rec["symbol"] != "APT" {
		t.Errorf("expected symbol attr, got %v", rec["symbol"])
	}
}

func TestLogger_TraceID(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, LevelDebug, "svc", func(ctx context.Context) string { return "abc123" })

	log.Debug(context.Background(), "traced")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid json record: %v", err)
	}
	if rec["trace_id"] != "abc123" {
		t.Errorf("expected trace_id, got %v", rec["trace_id"])
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug": LevelDebug,
		"warn":  LevelWarn,
		"error": LevelError,
		"info":  LevelInfo,
		"":      LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
