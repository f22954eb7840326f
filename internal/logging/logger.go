// Package logging builds the application logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

// ParseLevel accepts debug, info, warn and error.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

func options(level slog.Leveler) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Standardize 'error' key to 'err'
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}
}

// New creates a text logger on w. It writes to Stderr in the CLI so that tape
// output on Stdout stays clean.
func New(w io.Writer, level slog.Leveler) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, options(level)))
}

// NewWithFile fans records out to stderr and, in JSON, to the file at path. The
// returned closer releases the file.
func NewWithFile(level slog.Leveler, path string) (*slog.Logger, io.Closer, error) {
	if path == "" {
		return New(os.Stderr, level), io.NopCloser(nil), nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return Fanout(level, os.Stderr, f), f, nil
}

// Fanout writes text to term and JSON to file.
func Fanout(level slog.Leveler, term, file io.Writer) *slog.Logger {
	return slog.New(slogmulti.Fanout(
		slog.NewTextHandler(term, options(level)),
		slog.NewJSONHandler(file, options(level)),
	))
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
