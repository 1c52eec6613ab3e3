// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	l := New(slog.LevelInfo)
	if l == nil {
		t.Fatal("expected logger to be non-nil")
	}
	if !l.Enabled(t.Context(), slog.LevelInfo) {
		t.Error("expected info level to be enabled")
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name  string
		level slog.Level
		want  []string
		skip  []string
	}{
		{"DEBUG", slog.LevelDebug, []string{"msg=dbg", "msg=inf", "msg=wrn", "msg=err"}, nil},
		{"INFO", slog.LevelInfo, []string{"msg=inf", "msg=wrn", "msg=err"}, []string{"msg=dbg"}},
		{"WARN", slog.LevelWarn, []string{"msg=wrn", "msg=err"}, []string{"msg=dbg", "msg=inf"}},
		{"ERROR", slog.LevelError, []string{"msg=err"}, []string{"msg=dbg", "msg=inf", "msg=wrn"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			buf := bytes.NewBuffer(nil)
			l := NewLogger(tc.level, buf)
			l.Debug("dbg")
			l.Info("inf")
			l.Warn("wrn")
			l.Error("err")

			for _, w := range tc.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("expected %q to be logged, got: %s", w, buf.String())
				}
			}
			for _, s := range tc.skip {
				if strings.Contains(buf.String(), s) {
					t.Errorf("did not expect %q to be logged", s)
				}
			}
		})
	}
}

func TestErr(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	l := NewLogger(slog.LevelDebug, buf)
	want := "intentionally failing"
	l.Error("this is a test", Err(errors.New(want)))

	if !strings.Contains(buf.String(), `error="`+want+`"`) {
		t.Errorf("expected log line to contain %q, got: %q", want, buf.String())
	}
}
