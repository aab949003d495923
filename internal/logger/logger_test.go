package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewStandardLogger(&buf)

	l.Debugf("hidden %d", 1)
	l.Infof("shown %d", 2)
	l.Errorf("failed: %s", "boom")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "INFO  shown 2")
	assert.Contains(t, out, "ERROR failed: boom")
	assert.Equal(t, 2, strings.Count(out, "\n"))
}

func TestVerboseLogger_IncludesDebug(t *testing.T) {
	var buf bytes.Buffer
	NewVerboseLogger(&buf).Debugf("line %d", 7)
	assert.Contains(t, buf.String(), "DEBUG line 7")
}

func TestStandardLogger_WithPrefix(t *testing.T) {
	var buf bytes.Buffer
	l := NewLevelLogger(&buf, LevelWarn).WithPrefix("ingest: ")

	l.Infof("dropped")
	l.Warnf("duplicate key %q", "201")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), `WARN  ingest: duplicate key "201"`)
}

func TestBufferLogger_Lines(t *testing.T) {
	b := NewBufferLogger()
	assert.Nil(t, b.Lines())

	b.Infof("one")
	b.WithPrefix("sub: ").Warnf("two")

	assert.Equal(t, []string{"INFO one", "WARN sub: two"}, b.Lines())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"", LevelInfo},
		{"warning", LevelWarn},
		{" error ", LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseLevel("loud")
	require.Error(t, err)
}

func TestNopLogger(t *testing.T) {
	// Must be safe to call with anything.
	NopLogger.WithPrefix("x").Errorf("%v", nil)
}
