// Package logger provides the diagnostic logger shared by govmeta stages.
// User-facing progress output is written to the io.Writer each stage is
// given; this logger carries debug and operational detail to stderr.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog with a level that can be changed after construction.
type Logger struct {
	internal *slog.Logger
	level    *slog.LevelVar
}

// New creates a text logger writing to stderr at the given level.
func New(level string) *Logger {
	return NewWithWriter(os.Stderr, level)
}

// NewWithWriter creates a text logger writing to w at the given level.
func NewWithWriter(w io.Writer, level string) *Logger {
	lvl := new(slog.LevelVar)
	lvl.Set(ParseLevel(level))

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	return &Logger{
		internal: slog.New(handler),
		level:    lvl,
	}
}

// Discard returns a logger that drops everything. Used as the default when
// a caller does not supply one.
func Discard() *Logger {
	return NewWithWriter(io.Discard, "error")
}

// ParseLevel maps debug, info, warn and error to slog levels. Anything else
// is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetLevel changes the level of this logger and every child created by With.
func (l *Logger) SetLevel(level string) {
	l.level.Set(ParseLevel(level))
}

func (l *Logger) Debug(msg string, args ...any) { l.internal.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.internal.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.internal.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.internal.Error(msg, args...) }

// With creates a child logger with the given attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		internal: l.internal.With(args...),
		level:    l.level,
	}
}

// Log logs a message with the given level and attributes.
func (l *Logger) Log(ctx context.Context, level slog.Level, msg string, args ...any) {
	l.internal.Log(ctx, level, msg, args...)
}

// Slog exposes the underlying slog.Logger for libraries that take one.
func (l *Logger) Slog() *slog.Logger {
	return l.internal
}
