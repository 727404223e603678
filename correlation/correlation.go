// Package correlation propagates the Correlation and Causation ids
// found in the metadata of Event Log entries to the context used
// by subscription.Handler implementations.
package correlation

import "context"

// Metadata keys used to carry correlation information in entries.
const (
	EventIDKey       = "Event-Id"
	CorrelationIDKey = "Correlation-Id"
	CausationIDKey   = "Causation-Id"
)

type (
	correlationCtxKey struct{}
	causationCtxKey   struct{}
)

// WithCorrelationID returns a context carrying the specified Correlation id.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationCtxKey{}, id)
}

// WithCausationID returns a context carrying the specified Causation id.
func WithCausationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, causationCtxKey{}, id)
}

// IDFromContext returns the Correlation id in the context, if any.
func IDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(correlationCtxKey{}).(string)
	return id, ok
}

// CausationIDFromContext returns the Causation id in the context, if any.
func CausationIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(causationCtxKey{}).(string)
	return id, ok
}
