package diagnostics

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Entry is a diagnostic captured by a Recorder
type Entry struct {
	Level   Level
	Message string
}

// Recorder is an in-memory Sink
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// NewRecorder returns an empty Recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Info(_ context.Context, format string, args ...interface{}) {
	r.record(LevelInfo, format, args...)
}

func (r *Recorder) Warning(_ context.Context, format string, args ...interface{}) {
	r.record(LevelWarning, format, args...)
}

func (r *Recorder) Error(_ context.Context, format string, args ...interface{}) {
	r.record(LevelError, format, args...)
}

func (r *Recorder) record(level Level, format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Message: fmt.Sprintf(format, args...)})
}

// Entries returns a copy of the recorded entries in order
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Count returns the number of entries recorded at level
func (r *Recorder) Count(level Level) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.entries {
		if e.Level == level {
			n++
		}
	}
	return n
}

// Contains reports whether an entry at level contains substr
func (r *Recorder) Contains(level Level, substr string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.Level == level && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

// Reset drops every recorded entry
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}

// Tee returns a Sink forwarding every entry to each of sinks
func Tee(sinks ...Sink) Sink {
	return tee(sinks)
}

type tee []Sink

func (t tee) Info(ctx context.Context, format string, args ...interface{}) {
	for _, s := range t {
		s.Info(ctx, format, args...)
	}
}

func (t tee) Warning(ctx context.Context, format string, args ...interface{}) {
	for _, s := range t {
		s.Warning(ctx, format, args...)
	}
}

func (t tee) Error(ctx context.Context, format string, args ...interface{}) {
	for _, s := range t {
		s.Error(ctx, format, args...)
	}
}
