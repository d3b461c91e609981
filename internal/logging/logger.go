// Package logging builds the server's zerolog loggers.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// Setup returns the process logger at the named level. Lines go to stdout,
// human-readable when stdout is a terminal, and as JSON to file when one is
// given. The returned func closes the file.
func Setup(file, level string) (zerolog.Logger, func() error, error) {
	var out io.Writer = os.Stdout
	if term.IsTerminal(int(os.Stdout.Fd())) {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.TimeOnly}
	}

	closeFn := func() error { return nil }
	if file != "" {
		if err := os.MkdirAll(filepath.Dir(file), 0o700); err != nil {
			return zerolog.Nop(), closeFn, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
		if err != nil {
			return zerolog.Nop(), closeFn, fmt.Errorf("open log file: %w", err)
		}
		out = zerolog.MultiLevelWriter(out, f)
		closeFn = f.Close
	}
	return New(out, level), closeFn, nil
}

// New is a timestamped logger writing to w at the named level.
func New(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(w).Level(Level(level)).With().Timestamp().Logger()
}

// Level maps a level name to a zerolog level. Unknown names mean info.
func Level(name string) zerolog.Level {
	switch strings.ToLower(name) {
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

// Component tags every line of l with the subsystem that wrote it.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}
