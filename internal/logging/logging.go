package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"venuepipe/internal/config"
)

func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	if w == nil {
		w = os.Stdout
	}
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	return slog.New(h)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open returns a logger writing to stdout, or appending to cfg.File when
// toFile is set. The returned closer releases the file.
func Open(cfg config.LoggingConfig, toFile bool) (*slog.Logger, io.Closer, error) {
	if !toFile {
		return NewLogger(cfg.Level, os.Stdout), nopCloser{}, nil
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return NewLogger(cfg.Level, f), f, nil
}
