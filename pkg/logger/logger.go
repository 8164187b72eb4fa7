package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options selects the level, encoding and destination of a logger.
type Options struct {
	Level  string
	Format string // json or text
	Output io.Writer
}

// FromEnv reads LOG_LEVEL and LOG_FORMAT.
func FromEnv() Options {
	return Options{
		Level:  os.Getenv("LOG_LEVEL"),
		Format: os.Getenv("LOG_FORMAT"),
		Output: os.Stdout,
	}
}

// New constructs the slog logger shared by the API server and the scheduler.
func New() *slog.Logger {
	return NewWith(FromEnv()).With("service", "smart-energy")
}

// NewWith builds a logger from explicit options. Unknown levels fall back to
// info and unknown formats to JSON.
func NewWith(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}
	if strings.EqualFold(opts.Format, "text") {
		return slog.New(slog.NewTextHandler(out, handlerOpts))
	}
	return slog.New(slog.NewJSONHandler(out, handlerOpts))
}

// ParseLevel accepts the slog level names (debug, info, warn, error), case
// insensitive, with optional offsets such as "warn+2".
func ParseLevel(level string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
