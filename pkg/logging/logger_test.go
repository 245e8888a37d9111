package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestJSONLoggerWritesStructuredEntry(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	logger.Info("reach processed", ReachID("2245"), EdgeCount(7))

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not valid JSON: %v", err)
	}
	if entry.Level != "INFO" {
		t.Errorf("level = %q, want INFO", entry.Level)
	}
	if entry.Message != "reach processed" {
		t.Errorf("msg = %q", entry.Message)
	}
	if entry.Fields["reach_id"] != "2245" {
		t.Errorf("reach_id field = %v, want 2245", entry.Fields["reach_id"])
	}
	if entry.Fields["edge_count"] != float64(7) {
		t.Errorf("edge_count field = %v, want 7", entry.Fields["edge_count"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, WarnLevel)

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown")

	lines := strings.Count(buf.String(), "\n")
	if lines != 1 {
		t.Errorf("wrote %d entries, want 1", lines)
	}
}

func TestWithPresetsFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	child := logger.With(Component("batch"), RunID("abc"))
	child.Info("chunk complete", Chunk(3))

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not valid JSON: %v", err)
	}
	if entry.Fields["component"] != "batch" {
		t.Errorf("component field = %v", entry.Fields["component"])
	}
	if entry.Fields["run_id"] != "abc" {
		t.Errorf("run_id field = %v", entry.Fields["run_id"])
	}
	if entry.Fields["chunk"] != float64(3) {
		t.Errorf("chunk field = %v", entry.Fields["chunk"])
	}
}

func TestErrorField(t *testing.T) {
	f := Error(errors.New("trace failed"))
	if f.Value != "trace failed" {
		t.Errorf("Error field value = %v", f.Value)
	}
	if f := Error(nil); f.Value != nil {
		t.Errorf("Error(nil) value = %v, want nil", f.Value)
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("debug") != DebugLevel {
		t.Error("ParseLevel(debug) != DebugLevel")
	}
	if ParseLevel("nonsense") != InfoLevel {
		t.Error("ParseLevel should default to InfoLevel")
	}
}
