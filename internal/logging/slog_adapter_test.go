// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func traceGlobal(t *testing.T) {
	t.Helper()
	prev := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })
}

func TestSlogHandler_Enabled(t *testing.T) {
	traceGlobal(t)

	tests := []struct {
		name      string
		logger    zerolog.Level
		slogLevel slog.Level
		want      bool
	}{
		{"debug logger enables debug", zerolog.DebugLevel, slog.LevelDebug, true},
		{"info logger disables debug", zerolog.InfoLevel, slog.LevelDebug, false},
		{"info logger enables warn", zerolog.InfoLevel, slog.LevelWarn, true},
		{"warn logger disables info", zerolog.WarnLevel, slog.LevelInfo, false},
		{"error logger disables warn", zerolog.ErrorLevel, slog.LevelWarn, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSlogHandler(zerolog.New(nil).Level(tt.logger))
			if got := h.Enabled(context.Background(), tt.slogLevel); got != tt.want {
				t.Errorf("Enabled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSlogHandler_GlobalLevel(t *testing.T) {
	prev := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	if NewSlogHandler(zerolog.New(nil)).Enabled(context.Background(), slog.LevelInfo) {
		t.Error("Enabled(info) = true under global error level")
	}
}

func TestSlogHandler_Handle(t *testing.T) {
	traceGlobal(t)

	tests := []struct {
		level slog.Level
		want  string
	}{
		{slog.LevelDebug, "debug"},
		{slog.LevelInfo, "info"},
		{slog.LevelWarn, "warn"},
		{slog.LevelError, "error"},
		{slog.LevelError + 4, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			var buf bytes.Buffer
			slog.New(NewSlogHandler(zerolog.New(&buf))).Log(context.Background(), tt.level, "hello")

			out := buf.String()
			if !strings.Contains(out, `"level":"`+tt.want+`"`) || !strings.Contains(out, "hello") {
				t.Errorf("output = %s", out)
			}
		})
	}
}

func TestSlogHandler_Attributes(t *testing.T) {
	traceGlobal(t)

	var buf bytes.Buffer
	logger := NewSlogLogger(zerolog.New(&buf)).With("service", "api")

	logger.Info("served",
		"n", 10,
		"score", 1.5,
		"ok", true,
		"latency", 250*time.Millisecond,
		"err", errors.New("boom"),
		slog.Group("model", "version", 3),
	)

	out := buf.String()
	for _, want := range []string{
		`"service":"api"`,
		`"n":10`,
		`"score":1.5`,
		`"ok":true`,
		`"latency":250`,
		`"err":"boom"`,
		`"model.version":3`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}
}

func TestSlogHandler_WithGroup(t *testing.T) {
	traceGlobal(t)

	var buf bytes.Buffer
	logger := NewSlogLogger(zerolog.New(&buf)).WithGroup("supervisor").WithGroup("event")
	logger.Warn("restart", "service", "http", slog.Group("backoff", "seconds", 15))

	out := buf.String()
	for _, want := range []string{`"supervisor.event.service":"http"`, `"supervisor.event.backoff.seconds":15`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}

	h := NewSlogHandler(zerolog.Nop())
	if h.WithGroup("") != h {
		t.Error("WithGroup(\"\") returned a new handler")
	}
}

func TestSlogHandler_WithAttrsDoesNotShare(t *testing.T) {
	traceGlobal(t)

	var buf bytes.Buffer
	base := NewSlogHandler(zerolog.New(&buf)).WithAttrs([]slog.Attr{slog.String("a", "1")})
	left := base.WithAttrs([]slog.Attr{slog.String("b", "2")})
	right := base.WithAttrs([]slog.Attr{slog.String("c", "3")})

	slog.New(right).Info("right")
	if strings.Contains(buf.String(), `"b"`) {
		t.Errorf("sibling attributes leaked: %s", buf.String())
	}
	buf.Reset()
	slog.New(left).Info("left")
	if !strings.Contains(buf.String(), `"a":"1"`) || !strings.Contains(buf.String(), `"b":"2"`) {
		t.Errorf("output = %s", buf.String())
	}
}

func TestSlogToZerologLevel(t *testing.T) {
	tests := []struct {
		in   slog.Level
		want zerolog.Level
	}{
		{slog.LevelDebug - 4, zerolog.TraceLevel},
		{slog.LevelDebug, zerolog.DebugLevel},
		{slog.LevelInfo, zerolog.InfoLevel},
		{slog.LevelWarn, zerolog.WarnLevel},
		{slog.LevelError, zerolog.ErrorLevel},
	}
	for _, tt := range tests {
		if got := slogToZerologLevel(tt.in); got != tt.want {
			t.Errorf("slogToZerologLevel(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSlogHandler_AttrsKeepTheirGroup(t *testing.T) {
	traceGlobal(t)

	var buf bytes.Buffer
	NewSlogLogger(zerolog.New(&buf)).With("a", 1).WithGroup("g").Info("x", "b", 2)

	out := buf.String()
	if !strings.Contains(out, `"a":1`) || !strings.Contains(out, `"g.b":2`) {
		t.Errorf("output = %s", out)
	}
}
