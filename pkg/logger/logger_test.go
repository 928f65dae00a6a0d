package logx

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewWritesServiceField(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&buf, Config{Service: "desk"})
	logger.Info().Str("room", "101").Msg("booked")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["service"] != "desk" {
		t.Fatalf("service = %v, want desk", entry["service"])
	}
	if entry["room"] != "101" {
		t.Fatalf("room = %v, want 101", entry["room"])
	}
}

func TestNewDropsDebugUnlessEnabled(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&buf, Config{})
	logger.Debug().Msg("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected no output at info level, got %q", buf.String())
	}

	buf.Reset()
	logger = New(&buf, Config{Debug: true})
	logger.Debug().Msg("shown")
	if buf.Len() == 0 {
		t.Fatal("expected debug output when Debug is set")
	}
}
