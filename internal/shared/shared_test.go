package shared

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestShared(t *testing.T) {
	t.Run("NewLogger", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewLogger(buf)

		logger.Info("hello")
		if !strings.Contains(buf.String(), "hello") {
			t.Errorf("expected log output, got %q", buf.String())
		}
	})

	t.Run("NewLogger defaults to stderr", func(t *testing.T) {
		if logger := NewLogger(nil); logger == nil {
			t.Error("expected a logger")
		}
	})

	t.Run("NewFileLogger creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "wedx.log")
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("failed to create file logger: %v", err)
		}
		logger.Info("written to file")
	})

	t.Run("GenerateID", func(t *testing.T) {
		id := GenerateID()
		if _, err := uuid.Parse(id); err != nil {
			t.Errorf("expected a valid UUID, got %q: %v", id, err)
		}
		if id == GenerateID() {
			t.Error("expected unique IDs")
		}
	})

	t.Run("MarshalJSON", func(t *testing.T) {
		compact, err := MarshalJSON(map[string]int{"a": 1}, false)
		if err != nil {
			t.Fatal(err)
		}
		if string(compact) != `{"a":1}` {
			t.Errorf("unexpected compact output: %s", compact)
		}

		pretty, err := MarshalJSON(map[string]int{"a": 1}, true)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(pretty), "\n") {
			t.Error("expected indented output")
		}
	})
}
