package infra

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger("warn", &buf)
	log.Info("hidden")
	log.Warn("shown", "offer_id", "a")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, `"offer_id":"a"`) {
		t.Fatalf("unexpected log output %s", out)
	}
}
