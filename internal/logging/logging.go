// Package logging builds the diagnostic logger shared by commands and backends.
//
// User-facing output is plain text written by the commands themselves; this
// logger only carries diagnostics, which stay quiet unless --debug is given.
package logging

import (
	"io"
	"log/slog"
)

// New returns a text logger writing to w. With debug set the level is Debug,
// otherwise Warn.
func New(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
