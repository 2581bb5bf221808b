package meshgo

import (
	"io"
	"log/slog"
	"os"

	"github.com/hupe1980/meshgo/handle"
)

// Logger wraps slog.Logger with meshgo-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// The database is silent unless a logger is configured.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithType adds an entity type field to the logger.
func (l *Logger) WithType(t handle.Type) *Logger {
	return &Logger{
		Logger: l.Logger.With("type", t.String()),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogCreate logs a failed entity creation.
func (l *Logger) LogCreate(t handle.Type, count int, err error) {
	l.Error("create failed",
		"type", t.String(),
		"count", count,
		"error", err,
	)
}

// LogReserve logs a bulk block reservation.
func (l *Logger) LogReserve(t handle.Type, start handle.Handle, count int, err error) {
	if err != nil {
		l.Error("reserve failed",
			"type", t.String(),
			"count", count,
			"error", err,
		)
	} else {
		l.Debug("reserve completed",
			"type", t.String(),
			"start", start.String(),
			"count", count,
		)
	}
}

// LogDelete logs a delete operation.
func (l *Logger) LogDelete(count, reclaimed int, err error) {
	if err != nil {
		l.Error("delete failed",
			"count", count,
			"error", err,
		)
	} else {
		l.Debug("delete completed",
			"count", count,
			"reclaimed_sequences", reclaimed,
		)
	}
}

// LogSkin logs a skinning operation.
func (l *Logger) LogSkin(inputs, skin, nonManifold int, err error) {
	switch {
	case err != nil:
		l.Error("skin failed",
			"inputs", inputs,
			"error", err,
		)
	case nonManifold > 0:
		l.Warn("skin found non-manifold sides",
			"inputs", inputs,
			"skin", skin,
			"non_manifold", nonManifold,
		)
	default:
		l.Debug("skin completed",
			"inputs", inputs,
			"skin", skin,
		)
	}
}
