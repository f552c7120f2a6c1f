package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joseph-ayodele/debt-tracker/internal/common"
)

// Config holds logger configuration
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, text
	Output io.Writer
}

// ParseLevel maps a level name to slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// New builds a logger without touching the global default.
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	return slog.New(handler)
}

// Init initializes the global slog logger with the given configuration
func Init(cfg Config) *slog.Logger {
	l := New(cfg)
	slog.SetDefault(l)
	return l
}

// WithContext returns base (or the default logger) annotated with request and run IDs from ctx.
func WithContext(ctx context.Context, base *slog.Logger) *slog.Logger {
	logger := base
	if logger == nil {
		logger = slog.Default()
	}
	if ctx == nil {
		return logger
	}
	if requestID := common.RequestIDFromContext(ctx); requestID != "" {
		logger = logger.With("request_id", requestID)
	}
	if runID := common.RunIDFromContext(ctx); runID != "" {
		logger = logger.With("run_id", runID)
	}
	return logger
}
