package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Options struct {
	Level     string
	Format    string // text|json
	AddSource bool
	Env       string
	Output    io.Writer
}

// New builds a slog.Logger whose records are written by zerolog.
func New(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "json":
	default:
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05", NoColor: out != os.Stdout}
	}

	zl := zerolog.New(out).
		Level(slogToZerolog(parseLevel(opts.Level))).
		With().Timestamp().Logger()
	if opts.AddSource {
		zl = zl.With().CallerWithSkipFrameCount(6).Logger()
	}

	l := slog.New(NewHandler(zl))

	env := strings.TrimSpace(opts.Env)
	if env != "" {
		l = l.With("env", env)
	}

	return l
}

// Discard is a logger for tests and tools that must stay quiet.
func Discard() *slog.Logger {
	return slog.New(NewHandler(zerolog.Nop()))
}

func parseLevel(s string) slog.Level {
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

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.MessageFieldName = "msg"
	zerolog.ErrorFieldName = "err"
}
