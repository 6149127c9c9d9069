// Package logging builds the service's slog loggers and carries them through
// request contexts.
//
// The HTTP middleware stores a request-scoped logger (request ID, shop,
// method, path already attached) with WithLogger; application code pulls it
// back out with FromContext and adds its own fields:
//
//	logging.FromContext(ctx).ErrorContext(ctx, "failed to execute action",
//	    slog.String("operation", "Execute"),
//	    slog.String("action_id", actionID),
//	    slog.Any("error", err),
//	)
//
// Error records name the operation, the entity identifiers involved, and the
// full error chain under "error". All output passes through the redaction
// handler before leaving the process.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

type contextKey struct{}

// New builds a logger writing to w. Levels are "debug", "info", "warn", and
// "error"; anything else means info. Format "text" selects the text handler,
// everything else JSON. Debug level also turns on source locations, which
// is how action payloads get traced back to their executor during local
// debugging.
func New(level, format string, w io.Writer) *slog.Logger {
	lvl := parseLevel(level)

	opts := &slog.HandlerOptions{
		Level:       lvl,
		AddSource:   lvl == slog.LevelDebug,
		ReplaceAttr: newRedactAttr(),
	}

	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler)
}

// WithLogger stores logger in the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the context's logger, or slog.Default when none was
// stored.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
