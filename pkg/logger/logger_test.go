package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Run("Should accept known levels case-insensitively", func(t *testing.T) {
		for input, want := range map[string]LogLevel{
			"debug":   DebugLevel,
			"INFO":    InfoLevel,
			" Warn ":  WarnLevel,
			"error":   ErrorLevel,
			"eRrOr\n": ErrorLevel,
		} {
			got, err := ParseLevel(input)
			require.NoError(t, err, "input %q", input)
			assert.Equal(t, want, got, "input %q", input)
		}
	})

	t.Run("Should reject unknown levels", func(t *testing.T) {
		_, err := ParseLevel("verbose")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestNew(t *testing.T) {
	t.Run("Should write text lines with key-value pairs", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(&Config{Level: InfoLevel, Output: &buf})

		log.Info("processing file", "file", "a.json")

		out := buf.String()
		assert.Contains(t, out, "processing file")
		assert.Contains(t, out, "file=a.json")
	})

	t.Run("Should write one JSON object per line", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(&Config{Level: InfoLevel, Output: &buf, JSON: true})

		log.Warn("skipping subdirectory", "path", "in/sub")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
		assert.Equal(t, "skipping subdirectory", entry["msg"])
		assert.Equal(t, "in/sub", entry["path"])
	})

	t.Run("Should drop messages below the configured level", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(&Config{Level: WarnLevel, Output: &buf})

		log.Debug("debug message")
		log.Info("info message")
		log.Error("error message")

		out := buf.String()
		assert.NotContains(t, out, "debug message")
		assert.NotContains(t, out, "info message")
		assert.Contains(t, out, "error message")
	})

	t.Run("Should carry fields added with With", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(&Config{Level: DebugLevel, Output: &buf}).With("run", "abc123")

		log.Debug("started")

		assert.Contains(t, buf.String(), "run=abc123")
	})

	t.Run("Should fall back to defaults for a nil config", func(t *testing.T) {
		assert.NotNil(t, New(nil))
	})
}

func TestNewNop(t *testing.T) {
	log := NewNop()
	log.Error("discarded")
	assert.NotNil(t, log.With("k", "v"))
}

func TestFromContext(t *testing.T) {
	t.Run("Should return logger from context when present", func(t *testing.T) {
		var buf bytes.Buffer
		expected := New(&Config{Level: InfoLevel, Output: &buf})
		ctx := ContextWithLogger(context.Background(), expected)

		actual := FromContext(ctx)

		require.NotNil(t, actual)
		assert.Equal(t, expected, actual)
		actual.Info("through context")
		assert.True(t, strings.Contains(buf.String(), "through context"))
	})

	t.Run("Should return a no-op logger when none is attached", func(t *testing.T) {
		log := FromContext(context.Background())
		require.NotNil(t, log)
		log.Info("nobody hears this")
	})

	t.Run("Should return a no-op logger for a nil context", func(t *testing.T) {
		//nolint:staticcheck // exercising the nil guard
		log := FromContext(nil)
		require.NotNil(t, log)
	})
}
