package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{" WARN ", zerolog.WarnLevel},
		{"trace", zerolog.TraceLevel},
		{"", zerolog.InfoLevel},
		{"unknown", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Fatalf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewLoggerFormatsOutput(t *testing.T) {
	tests := []struct {
		name       string
		format     string
		level      string
		assertions func(t *testing.T, output string)
	}{
		{
			name:   "console format is human readable",
			format: "console",
			level:  "info",
			assertions: func(t *testing.T, output string) {
				if !strings.Contains(output, "INF") || !strings.Contains(output, "hello") {
					t.Fatalf("expected console output with level and message, got %q", output)
				}
			},
		},
		{
			name:   "json format carries fields",
			format: "json",
			level:  "debug",
			assertions: func(t *testing.T, output string) {
				var line map[string]any
				if err := json.Unmarshal([]byte(output), &line); err != nil {
					t.Fatalf("expected json output, got %q", output)
				}
				if line["message"] != "hello" || line["service"] != "energyledger" || line["caller"] == nil {
					t.Fatalf("missing fields in %v", line)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(Config{Format: tt.format, Level: tt.level, Output: &buf})
			log.Info().Msg("hello")

			if buf.Len() == 0 {
				t.Fatalf("expected log output, got empty string")
			}

			tt.assertions(t, buf.String())
		})
	}
}

func TestNewLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Format: "json", Level: "warn", Output: &buf})

	log.Info().Msg("dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered at warn level, got %q", buf.String())
	}

	log.Warn().Msg("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Fatalf("expected warn line, got %q", buf.String())
	}
}
