// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package logger

import (
	"io"
	"log/slog"
	"os"
)

// Logger wraps a slog.Logger so that packages share one logging type.
type Logger struct {
	*slog.Logger
}

// New returns a text logger writing to stderr at the given level.
func New(level slog.Level) *Logger {
	return NewLogger(level, os.Stderr)
}

// NewLogger returns a text logger writing to w at the given level.
func NewLogger(level slog.Level, w io.Writer) *Logger {
	return &Logger{slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))}
}

// Err returns the error as a slog attribute.
func Err(err error) slog.Attr {
	return slog.Any("error", err)
}
