// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package mlog is the ambient logging surface shared by every codec
// package in this module. It mirrors the small leveled-logger helper the
// upstream PE parser imports from its own log sub-package (never vendored
// into this pack), reimplemented here in the same shape: a Logger
// interface, a level filter, and a Helper with printf-style methods.
package mlog

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Level is a log severity.
type Level int

// Severities, lowest to highest.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger is the minimal sink every codec package writes through.
type Logger interface {
	Log(level Level, msg string)
}

// stdLogger writes one line per call to an io.Writer, guarded by a mutex
// since codecs may run concurrently at the process level (spec.md §5).
type stdLogger struct {
	mu sync.Mutex
	w  io.Writer
}

// NewStdLogger returns a Logger that writes "LEVEL: msg\n" to w.
func NewStdLogger(w io.Writer) Logger {
	return &stdLogger{w: w}
}

func (l *stdLogger) Log(level Level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "%s: %s\n", level, msg)
}

// filter drops messages below a minimum level.
type filter struct {
	next Logger
	min  Level
}

// FilterOption configures a filter.
type FilterOption func(*filter)

// FilterLevel sets the minimum level that passes through the filter.
func FilterLevel(min Level) FilterOption {
	return func(f *filter) { f.min = min }
}

// NewFilter wraps next with level filtering. By default everything passes.
func NewFilter(next Logger, opts ...FilterOption) Logger {
	f := &filter{next: next, min: LevelDebug}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *filter) Log(level Level, msg string) {
	if level < f.min {
		return
	}
	f.next.Log(level, msg)
}

// Helper adds printf-style convenience methods over a Logger, and is what
// codec packages actually hold a reference to.
type Helper struct {
	logger Logger
}

// NewHelper wraps a Logger.
func NewHelper(logger Logger) *Helper {
	return &Helper{logger: logger}
}

// Debugf logs at debug level.
func (h *Helper) Debugf(format string, args ...any) { h.logf(LevelDebug, format, args...) }

// Debug logs at debug level without formatting.
func (h *Helper) Debug(args ...any) { h.log(LevelDebug, args...) }

// Infof logs at info level.
func (h *Helper) Infof(format string, args ...any) { h.logf(LevelInfo, format, args...) }

// Warnf logs at warn level. This is the level used for recoverable
// anomalies a writer can still round-trip (spec.md §7): derivation
// mismatches preserved as overrides, fixup applications, and similar.
func (h *Helper) Warnf(format string, args ...any) { h.logf(LevelWarn, format, args...) }

// Warn logs at warn level without formatting.
func (h *Helper) Warn(args ...any) { h.log(LevelWarn, args...) }

// Errorf logs at error level.
func (h *Helper) Errorf(format string, args ...any) { h.logf(LevelError, format, args...) }

func (h *Helper) logf(level Level, format string, args ...any) {
	if h == nil || h.logger == nil {
		return
	}
	h.logger.Log(level, fmt.Sprintf(format, args...))
}

func (h *Helper) log(level Level, args ...any) {
	if h == nil || h.logger == nil {
		return
	}
	h.logger.Log(level, fmt.Sprint(args...))
}

// Default returns the helper every codec package falls back to when the
// caller supplies no logger: a stdout logger filtered to warnings and
// above, matching the teacher's own `New`/`NewBytes` default.
func Default() *Helper {
	return defaultHelper
}

var defaultHelper = NewHelper(NewFilter(NewStdLogger(os.Stdout), FilterLevel(LevelWarn)))
