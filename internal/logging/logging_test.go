package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewFormats(t *testing.T) {
	for _, format := range []string{"text", "json", "bogus"} {
		logger := New("info", format)
		if logger == nil {
			t.Fatalf("New(info, %s) returned nil", format)
		}
		logger.Info("probe")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "warn", "text")

	logger.Info("should not appear")
	if strings.Contains(buf.String(), "should not appear") {
		t.Error("info record leaked through warn level")
	}

	logger.Warn("should appear")
	if !strings.Contains(buf.String(), "should appear") {
		t.Error("warn record missing")
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "info", "json")

	logger.Info("hello", "key", "value")
	if !strings.Contains(buf.String(), `"msg":"hello"`) {
		t.Errorf("unexpected output: %s", buf.String())
	}
}
