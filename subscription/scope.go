package subscription

import (
	"context"

	"github.com/get-eventually/go-subscriber/checkpoint"
)

// Scope holds the dependencies used to process a single Batch.
//
// Scopes are acquired before processing a Batch and released right after,
// so that no connection or transaction is held across Batches.
type Scope struct {
	Handler     Handler
	Checkpoints checkpoint.Store

	release func()
}

// NewScope returns a Scope using the provided dependencies.
// The release function, if not nil, is called when the Scope is released.
func NewScope(handler Handler, checkpoints checkpoint.Store, release func()) Scope {
	return Scope{
		Handler:     handler,
		Checkpoints: checkpoints,
		release:     release,
	}
}

// Release releases the resources held by the Scope.
func (s Scope) Release() {
	if s.release != nil {
		s.release()
	}
}

// ScopeFactory acquires a fresh Scope every time a Batch is processed.
type ScopeFactory interface {
	Acquire(ctx context.Context) (Scope, error)
}

// ScopeFactoryFunc is a functional implementation of the ScopeFactory interface.
type ScopeFactoryFunc func(ctx context.Context) (Scope, error)

// Acquire implements the subscription.ScopeFactory interface.
func (fn ScopeFactoryFunc) Acquire(ctx context.Context) (Scope, error) { return fn(ctx) }

// StaticScopes returns a ScopeFactory that always uses the same, long-lived
// Handler and checkpoint.Store, with nothing to release.
func StaticScopes(handler Handler, checkpoints checkpoint.Store) ScopeFactoryFunc {
	return func(context.Context) (Scope, error) {
		return NewScope(handler, checkpoints, nil), nil
	}
}
