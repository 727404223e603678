// Package logger contains the structured logging facade used by the
// components of this module.
//
// Components accept a Logger that may be nil: the package-level helpers
// turn calls on a nil Logger into no-ops.
package logger

// Field represents a structured field to be added to a Log entry.
type Field struct {
	Key   string
	Value interface{}
}

// With is an helper function to add a field in a functional way.
func With(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Logger is a structured logger capable of printing information about
// the execution of a component at various levels.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Debug delegates the debug log call to the provided logger, if not nil.
func Debug(l Logger, msg string, fields ...Field) {
	if l != nil {
		l.Debug(msg, fields...)
	}
}

// Info delegates the info log call to the provided logger, if not nil.
func Info(l Logger, msg string, fields ...Field) {
	if l != nil {
		l.Info(msg, fields...)
	}
}

// Warn delegates the warning log call to the provided logger, if not nil.
func Warn(l Logger, msg string, fields ...Field) {
	if l != nil {
		l.Warn(msg, fields...)
	}
}

// Error delegates the error log call to the provided logger, if not nil.
func Error(l Logger, msg string, fields ...Field) {
	if l != nil {
		l.Error(msg, fields...)
	}
}

// Fields returns a Logger that adds the specified fields to every entry
// logged through the provided Logger.
//
// A nil Logger is returned as-is.
func Fields(l Logger, fields ...Field) Logger {
	if l == nil || len(fields) == 0 {
		return l
	}

	return withFields{Logger: l, fields: fields}
}

type withFields struct {
	Logger
	fields []Field
}

func (w withFields) merge(fields []Field) []Field {
	merged := make([]Field, 0, len(w.fields)+len(fields))
	merged = append(merged, w.fields...)

	return append(merged, fields...)
}

func (w withFields) Debug(msg string, fields ...Field) { w.Logger.Debug(msg, w.merge(fields)...) }
func (w withFields) Info(msg string, fields ...Field)  { w.Logger.Info(msg, w.merge(fields)...) }
func (w withFields) Warn(msg string, fields ...Field)  { w.Logger.Warn(msg, w.merge(fields)...) }
func (w withFields) Error(msg string, fields ...Field) { w.Logger.Error(msg, w.merge(fields)...) }
