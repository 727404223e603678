package logger

import (
	"sync"
	"testing"
)

var (
	_ Logger = Test{}
	_ Logger = new(Recorder)
)

// Test is a logger.Logger implementation using testing.T instance.
type Test struct{ t testing.TB }

// NewTest returns a new logger using the provided testing.T instance.
func NewTest(t testing.TB) Test {
	return Test{t: t}
}

// Debug uses t.Logf to print a debug message.
func (t Test) Debug(msg string, fields ...Field) {
	t.t.Logf("[debug] %s {args: %+v}\n", msg, fields)
}

// Info uses t.Logf to print an info message.
func (t Test) Info(msg string, fields ...Field) {
	t.t.Logf("[info] %s {args: %+v}\n", msg, fields)
}

// Warn uses t.Logf to print a warning message.
func (t Test) Warn(msg string, fields ...Field) {
	t.t.Logf("[warn] %s {args: %+v}\n", msg, fields)
}

// Error uses t.Logf to print an error message.
func (t Test) Error(msg string, fields ...Field) {
	t.t.Logf("[error] %s {args: %+v}\n", msg, fields)
}

// Entry is a log entry captured by a Recorder.
type Entry struct {
	Level   string
	Message string
	Fields  []Field
}

// Recorder is a logger.Logger that keeps every entry in memory,
// useful for asserting on the logging behavior of a component.
type Recorder struct {
	mx      sync.Mutex
	entries []Entry
}

func (r *Recorder) record(level, msg string, fields []Field) {
	r.mx.Lock()
	defer r.mx.Unlock()

	r.entries = append(r.entries, Entry{Level: level, Message: msg, Fields: fields})
}

// Debug records a debug entry.
func (r *Recorder) Debug(msg string, fields ...Field) { r.record("debug", msg, fields) }

// Info records an info entry.
func (r *Recorder) Info(msg string, fields ...Field) { r.record("info", msg, fields) }

// Warn records a warning entry.
func (r *Recorder) Warn(msg string, fields ...Field) { r.record("warn", msg, fields) }

// Error records an error entry.
func (r *Recorder) Error(msg string, fields ...Field) { r.record("error", msg, fields) }

// Entries returns the entries recorded at the specified level.
func (r *Recorder) Entries(level string) []Entry {
	r.mx.Lock()
	defer r.mx.Unlock()

	var entries []Entry

	for _, entry := range r.entries {
		if entry.Level == level {
			entries = append(entries, entry)
		}
	}

	return entries
}
