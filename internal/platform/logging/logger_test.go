package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"
)

func TestLogger_WritesKeyValueFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, FormatJSON, LevelInfo).Named("usecase.anomaly")

	logger.Info("anomaly scan finished", "match_id", int64(42), "flagged", 3, "error", errors.New("boom"))

	var entry map[string]any
	if err := sonic.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if entry["msg"] != "anomaly scan finished" {
		t.Fatalf("unexpected msg: %v", entry["msg"])
	}
	if entry["logger"] != "usecase.anomaly" {
		t.Fatalf("unexpected logger name: %v", entry["logger"])
	}
	if got, _ := entry["match_id"].(float64); got != 42 {
		t.Fatalf("unexpected match_id: %v", entry["match_id"])
	}
	if entry["error"] != "boom" {
		t.Fatalf("unexpected error field: %v", entry["error"])
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, FormatJSON, LevelWarn)

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("visible")

	if strings.Contains(buf.String(), "hidden") {
		t.Fatalf("expected debug/info lines to be filtered, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "visible") {
		t.Fatalf("expected warn line, got %q", buf.String())
	}
}

func TestLogger_NilReceiverFallsBack(t *testing.T) {
	var logger *Logger
	logger.Info("no panic")
	logger.With("k", "v").Warn("still no panic")
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		" WARN ":  LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
		"verbose": LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
