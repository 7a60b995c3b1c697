package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "warn")

	l.Info("hidden")
	l.Warn("shown", "source", "https://314pool.com")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "source=https://314pool.com")
}

func TestLogger_SetLevelAppliesToChildren(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "error")
	child := l.With("component", "fetch")

	child.Debug("before")
	l.SetLevel("debug")
	child.Debug("after")

	assert.NotContains(t, buf.String(), "before")
	assert.Contains(t, buf.String(), "after")
	assert.Contains(t, buf.String(), "component=fetch")
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Error("dropped")
	assert.NotNil(t, l.Slog())
}

func TestLogger_LogAtDynamicLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "info")

	l.Log(context.Background(), slog.LevelDebug, "quiet")
	l.Log(context.Background(), slog.LevelWarn, "loud", "status", 502)
	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "status=502")
}
