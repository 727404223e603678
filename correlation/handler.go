package correlation

import (
	"context"

	"github.com/get-eventually/go-subscriber/subscription"
)

var _ subscription.Handler = HandlerWrapper{}

// HandlerWrapper adds Correlation and Causation ids to the context of
// the wrapped subscription.Handler, using the metadata of the entry handled.
//
// Use WrapHandler to create a new instance.
type HandlerWrapper struct {
	handler subscription.Handler
}

// WrapHandler wraps the specified subscription.Handler.
func WrapHandler(handler subscription.Handler) HandlerWrapper {
	return HandlerWrapper{handler: handler}
}

// Handle calls the wrapped subscription.Handler with a context containing
// the Correlation id of the entry, if any, and the entry id as Causation id.
func (hw HandlerWrapper) Handle(ctx context.Context, event subscription.Event) error {
	if correlationID, ok := event.Metadata[CorrelationIDKey]; ok {
		ctx = WithCorrelationID(ctx, correlationID)
	}

	// New actions taken by the handler are caused by the entry being handled.
	causationID := event.ID
	if eventID, ok := event.Metadata[EventIDKey]; ok {
		causationID = eventID
	}

	if causationID != "" {
		ctx = WithCausationID(ctx, causationID)
	}

	return hw.handler.Handle(ctx, event) //nolint:wrapcheck // Transparent wrapper.
}
