// Package diag provides the diagnostics collector handed to each build
// component. Filtering decisions and degraded resolutions are diagnostics,
// not errors: components report them here and keep going. Production wiring
// forwards to slog; tests use a Recorder to assert on what was reported.
package diag

import (
	"context"
	"log/slog"
	"sync"
)

// Collector receives non-fatal diagnostics from build components.
type Collector interface {
	Debug(msg string, attrs ...slog.Attr)
	Warn(msg string, attrs ...slog.Attr)
}

// Logger forwards diagnostics to an slog.Logger.
type Logger struct {
	log *slog.Logger
}

// NewLogger returns a Collector backed by log. A nil log uses slog.Default.
func NewLogger(log *slog.Logger) *Logger {
	if log == nil {
		log = slog.Default()
	}
	return &Logger{log: log}
}

func (l *Logger) Debug(msg string, attrs ...slog.Attr) {
	l.log.LogAttrs(context.Background(), slog.LevelDebug, msg, attrs...)
}

func (l *Logger) Warn(msg string, attrs ...slog.Attr) {
	l.log.LogAttrs(context.Background(), slog.LevelWarn, msg, attrs...)
}

// Entry is one recorded diagnostic.
type Entry struct {
	Level slog.Level
	Msg   string
	Attrs []slog.Attr
}

// Recorder captures diagnostics for inspection. Safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Debug(msg string, attrs ...slog.Attr) {
	r.record(slog.LevelDebug, msg, attrs)
}

func (r *Recorder) Warn(msg string, attrs ...slog.Attr) {
	r.record(slog.LevelWarn, msg, attrs)
}

func (r *Recorder) record(level slog.Level, msg string, attrs []slog.Attr) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Msg: msg, Attrs: attrs})
}

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Warnings returns the messages recorded at warn level, in order.
func (r *Recorder) Warnings() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.entries {
		if e.Level == slog.LevelWarn {
			out = append(out, e.Msg)
		}
	}
	return out
}
