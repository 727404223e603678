package subscription

import (
	"context"

	"github.com/get-eventually/go-subscriber/eventlog"
	"github.com/get-eventually/go-subscriber/message"
)

// Event is an Event Log entry delivered to a Handler, together with
// its decoded payload.
type Event struct {
	eventlog.Entry

	// Message is the decoded payload of the entry, or nil
	// if the Processor has not been given a Decoder.
	Message message.Message
}

// Handler is the application logic that a Subscription applies to every entry,
// such as updating a projection or triggering a side effect.
//
// Entries are delivered at least once, so Handlers should be idempotent.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc is a functional implementation of the Handler interface.
type HandlerFunc func(ctx context.Context, event Event) error

// Handle implements the subscription.Handler interface.
func (fn HandlerFunc) Handle(ctx context.Context, event Event) error { return fn(ctx, event) }

// Decoder decodes the payload of an entry of the specified type.
//
// serde.Registry implements this interface.
type Decoder interface {
	Deserialize(entryType string, data []byte) (message.Message, error)
}
