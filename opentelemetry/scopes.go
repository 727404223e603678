package opentelemetry

import (
	"context"

	"github.com/get-eventually/go-subscriber/subscription"
)

var _ subscription.ScopeFactory = &InstrumentedScopes{}

// InstrumentedScopes wraps a subscription.ScopeFactory so that the Handler
// and the checkpoint.Store of every acquired Scope are instrumented.
//
// Use InstrumentScopes to create a new instance.
type InstrumentedScopes struct {
	subscriptionID string
	scopes         subscription.ScopeFactory
	handler        *handlerInstruments
	store          *storeInstruments
}

// InstrumentScopes wraps the subscription.ScopeFactory used by the Subscription
// with the specified identifier.
//
// An error is returned if metrics could not be registered.
func InstrumentScopes(
	subscriptionID string,
	scopes subscription.ScopeFactory,
	opts ...Option,
) (*InstrumentedScopes, error) {
	cfg := newConfig(opts...)

	handler, err := newHandlerInstruments(cfg)
	if err != nil {
		return nil, err
	}

	store, err := newStoreInstruments(cfg)
	if err != nil {
		return nil, err
	}

	return &InstrumentedScopes{
		subscriptionID: subscriptionID,
		scopes:         scopes,
		handler:        handler,
		store:          store,
	}, nil
}

// Acquire implements the subscription.ScopeFactory interface.
func (is *InstrumentedScopes) Acquire(ctx context.Context) (subscription.Scope, error) {
	scope, err := is.scopes.Acquire(ctx)
	if err != nil {
		return subscription.Scope{}, err //nolint:wrapcheck // Transparent wrapper.
	}

	return subscription.NewScope(
		&InstrumentedHandler{
			subscriptionID: is.subscriptionID,
			handler:        scope.Handler,
			instruments:    is.handler,
		},
		&InstrumentedCheckpointStore{
			store:       scope.Checkpoints,
			instruments: is.store,
		},
		scope.Release,
	), nil
}
