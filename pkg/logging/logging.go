package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ParseLevel maps a config string to a zerolog level. Unknown values are info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "none", "disabled":
		return zerolog.Disabled
	case "":
		return zerolog.InfoLevel
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// New builds a logger. With a path, JSON lines are appended to that file
// since the terminal belongs to the TUI; otherwise a console writer on stderr.
// The returned closer must be called on shutdown.
func New(level, path string) (zerolog.Logger, io.Closer, error) {
	if path == "" {
		out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		return zerolog.New(out).Level(ParseLevel(level)).With().Timestamp().Logger(), io.NopCloser(nil), nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return zerolog.Nop(), io.NopCloser(nil), err
	}
	return zerolog.New(f).Level(ParseLevel(level)).With().Timestamp().Logger(), f, nil
}
