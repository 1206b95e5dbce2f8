// Package logging builds slog loggers and carries them through contexts.
package logging

import (
	"context"
	"io"
	"log/slog"

	"github.com/bopkit/bopprep/internal/model"
	"github.com/google/uuid"
)

// New creates a slog.Logger writing to w. Unknown levels fall back to info
// and any format other than "json" produces text output. It does not set
// the global logger.
func New(levelStr, formatStr string, w io.Writer) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler

	if formatStr == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}

	return slog.New(handler)
}

// WithRunID tags every record of logger with a fresh run identifier.
func WithRunID(logger *slog.Logger) *slog.Logger {
	return logger.With("run_id", uuid.NewString())
}

// key is an unexported type to prevent collisions with context keys from other packages.
type key struct{}

// WithLogger returns a new context with the provided logger embedded.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, key{}, logger)
}

// FromContext extracts the logger from ctx, or slog.Default when none is set.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(key{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// ProgressLogger returns a progress callback that writes events to logger.
// Verbose events are logged at debug level and success at info level.
func ProgressLogger(logger *slog.Logger) model.ProgressFunc {
	return func(e model.ProgressEvent) {
		switch e.Level {
		case model.LevelVerbose:
			logger.Debug(e.Message)
		case model.LevelWarning:
			logger.Warn(e.Message)
		case model.LevelError:
			logger.Error(e.Message)
		case model.LevelSuccess:
			logger.Info(e.Message, "status", "success")
		default:
			logger.Info(e.Message)
		}
	}
}
