package internal

import (
	"io"
	"log/slog"
	"time"
)

// NewLogger returns a text logger in dev and a JSON logger otherwise. Every
// record carries the service name.
func NewLogger(w io.Writer, env string, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var h slog.Handler
	switch env {
	case "prod":
		opts.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.String("time", a.Value.Time().Format(time.RFC3339Nano))
			}
			return a
		}
		h = slog.NewJSONHandler(w, opts)
	default:
		h = slog.NewTextHandler(w, opts)
	}

	return slog.New(h).With(slog.String("service", "flipcart"))
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		slog.Default().Warn("Invalid log level. Using default level: info", slog.String("value", level))
		return slog.LevelInfo
	}
}
