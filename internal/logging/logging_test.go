package logging

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.input), "ParseLevel(%q)", tt.input)
	}
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", Level(42).String())
}

func TestLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, LevelWarn)

	l.Debug("debug line %d", 1)
	l.Info("info line")
	l.Warn("house mismatch for %s", "Mars")

	out := buf.String()
	assert.NotContains(t, out, "debug line")
	assert.NotContains(t, out, "info line")
	assert.Contains(t, out, "house mismatch for Mars")
}

func TestLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, LevelError)

	l.Info("hidden")
	l.SetLevel(LevelDebug)
	l.Debug("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
}

func TestLogger_SetOutput(t *testing.T) {
	var first, second bytes.Buffer
	l := NewWithWriter(&first, LevelInfo)

	l.Info("one")
	l.SetOutput(&second)
	l.Info("two")

	assert.Contains(t, first.String(), "one")
	assert.NotContains(t, first.String(), "two")
	assert.Contains(t, second.String(), "two")
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, LevelInfo).With("component", "camera")

	l.Info("animation started")

	out := buf.String()
	assert.Contains(t, out, "animation started")
	assert.Contains(t, out, "component=camera")
}

func TestDiscard(t *testing.T) {
	l := Discard()
	// Must not panic.
	l.Debug("x")
	l.Error("y %v", 1)
	l.With("k", "v").Warn("z")
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ls-spiral."+SessionStamp(time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC))+".log")
	f, err := OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Contains(t, path, "20240301_123000")
}
