package observability

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger builds the process logger: JSON to stdout, debug in dev, every
// record stamped with the service name and the active trace/span ids.
func NewLogger(env, service string) *slog.Logger {
	return newLogger(os.Stdout, env, service)
}

func newLogger(w io.Writer, env, service string) *slog.Logger {
	level := slog.LevelInfo

	if env == "dev" {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})

	return slog.New(NewTraceHandler(handler)).With("service", service)
}
