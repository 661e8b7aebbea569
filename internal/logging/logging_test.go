package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "debug", "json")
	log.Debug().Str("k", "v").Msg("hello")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if line["message"] != "hello" || line["k"] != "v" {
		t.Errorf("unexpected log line: %v", line)
	}
	if _, ok := line["time"]; !ok {
		t.Error("expected timestamp field")
	}
}

func TestNewUnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "chatty", "json")
	if log.GetLevel() != zerolog.InfoLevel {
		t.Errorf("expected info level, got %s", log.GetLevel())
	}
	log.Debug().Msg("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug line should be filtered, got %q", buf.String())
	}
}

func TestAsynqLogger(t *testing.T) {
	var buf bytes.Buffer
	a := AsynqLogger{L: New(&buf, "info", "json")}
	a.Warn("queue ", "processing", " stalled")
	if !strings.Contains(buf.String(), "queue processing stalled") {
		t.Errorf("unexpected output %q", buf.String())
	}
}
