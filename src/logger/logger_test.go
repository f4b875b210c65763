package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":    LevelDebug,
		"INFO":     LevelInfo,
		" warn ":   LevelWarning,
		"WARNING":  LevelWarning,
		"error":    LevelError,
		"CRITICAL": LevelCritical,
		"verbose":  LevelInfo,
		"":         LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithWriter(&buf, "WARNING", "Aggregator")

	log.Debug("hidden %d", 1)
	log.Info("hidden %d", 2)
	log.Warning("shown %d", 3)
	log.Named("Builder").Error("shown %d", 4)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("output contains filtered messages:\n%s", out)
	}
	if !strings.Contains(out, "[Aggregator] WARNING: shown 3") {
		t.Errorf("missing warning line:\n%s", out)
	}
	if !strings.Contains(out, "[Builder] ERROR: shown 4") {
		t.Errorf("missing named error line:\n%s", out)
	}
}
