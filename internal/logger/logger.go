// Copyright 2026 The Ramfs Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logger provides the engine's structured logging, modeled on
// gcsfuse's internal/logger: a log/slog logger with TRACE/DEBUG/INFO/
// WARNING/ERROR severities, a choice of text or JSON handler, and optional
// file rotation via gopkg.in/natefinch/lumberjack.v2.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/hpc-scratch/ramfs/cfg"
)

// toSlogLevel maps cfg.LogSeverity onto slog's smaller level set; TRACE
// has no slog equivalent, so it is modeled one step below LevelDebug, the
// same trick gcsfuse uses for its own TRACE support.
const levelTrace = slog.Level(-8)

// levelOff sits above slog.LevelError so nothing is ever emitted.
const levelOff = slog.Level(1 << 20)

var toSlogLevel = map[cfg.LogSeverity]slog.Level{
	cfg.TraceLogSeverity:   levelTrace,
	cfg.DebugLogSeverity:   slog.LevelDebug,
	cfg.InfoLogSeverity:    slog.LevelInfo,
	cfg.WarningLogSeverity: slog.LevelWarn,
	cfg.ErrorLogSeverity:   slog.LevelError,
	cfg.OffLogSeverity:     levelOff,
}

// severityName renders a slog.Level back to the word cfg.LogSeverity uses,
// for the text handler's "severity=" field (gcsfuse prints "severity=INFO"
// rather than slog's default "level=INFO").
func severityName(l slog.Level) string {
	switch {
	case l < slog.LevelDebug:
		return "TRACE"
	case l < slog.LevelInfo:
		return "DEBUG"
	case l < slog.LevelWarn:
		return "INFO"
	case l < slog.LevelError:
		return "WARNING"
	default:
		return "ERROR"
	}
}

// Logger wraps an *slog.Logger with the engine's severity-ranked filtering
// and an optional asynchronous sink so a slow log destination never blocks
// a hot I/O path (spec.md's latency-sensitive hot paths; see async.go).
type Logger struct {
	base  *slog.Logger
	async *asyncWriter
}

// New builds a Logger per cfg.LoggingConfig: a text or JSON handler writing,
// through an asyncWriter, to either the configured file (rotated by
// lumberjack) or stderr.
func New(lc cfg.LoggingConfig) *Logger {
	var sink io.Writer = os.Stderr
	if lc.FilePath != "" {
		sink = &lumberjack.Logger{
			Filename:   lc.FilePath,
			MaxSize:    100, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
	}
	async := newAsyncWriter(sink, 1024)
	w := io.Writer(async)

	level := toSlogLevel[lc.Severity]
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				lvl, _ := a.Value.Any().(slog.Level)
				a.Key = "severity"
				a.Value = slog.StringValue(severityName(lvl))
			}
			return a
		},
	}

	var h slog.Handler
	if lc.Format == cfg.JSONLogFormat {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}

	return &Logger{base: slog.New(h), async: async}
}

// Close flushes and stops the background sink goroutine. Loggers built
// with With share their parent's sink and do not need a separate Close.
func (l *Logger) Close() error {
	if l.async == nil {
		return nil
	}
	return l.async.Close()
}

func (l *Logger) Trace(msg string, args ...any) { l.base.Log(context.Background(), levelTrace, msg, args...) }
func (l *Logger) Debug(msg string, args ...any)  { l.base.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)   { l.base.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)   { l.base.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any)  { l.base.Error(msg, args...) }

// With returns a Logger that always includes the given key/value pairs,
// e.g. a mount instance id (see internal/engine).
func (l *Logger) With(args ...any) *Logger {
	return &Logger{base: l.base.With(args...)}
}
