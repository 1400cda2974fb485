// Package logging configures the process-wide zerolog logger and carries
// request ids through contexts so every log line of a request can be correlated.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type ctxKey struct{}

// Setup configures the global logger based on level and format.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
func Setup(level, format string) {
	SetupWriter(os.Stdout, level, format)
}

// SetupWriter is Setup with an explicit destination.
func SetupWriter(w io.Writer, level, format string) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.SetGlobalLevel(parseLevel(level))

	if strings.ToLower(format) != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// WithRequestID stores a request id in ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestID returns the request id stored in ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// FromContext returns the global logger, enriched with the request id when ctx carries one.
func FromContext(ctx context.Context) zerolog.Logger {
	logger := log.Logger
	if id := RequestID(ctx); id != "" {
		logger = logger.With().Str("request_id", id).Logger()
	}
	return logger
}

// WithFields returns a logger with additional key/value pairs.
//
//	l := logging.WithFields(ctx, "chart_id", id, "file", name)
//	l.Info().Msg("chart imported")
func WithFields(ctx context.Context, kv ...any) zerolog.Logger {
	return FromContext(ctx).With().Fields(kv).Logger()
}
