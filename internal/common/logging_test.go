package common

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLoggerWithOutput_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput("warn", &buf)

	logger.Info().Msg("hidden")
	logger.Warn().Str("symbol", "AAPL").Msg("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message written at warn level: %s", out)
	}
	if !strings.Contains(out, "visible") || !strings.Contains(out, "AAPL") {
		t.Errorf("expected warn message with field, got: %s", out)
	}
}

func TestNewSilentLogger_Discards(t *testing.T) {
	logger := NewSilentLogger()
	logger.Error().Msg("nowhere")
}
