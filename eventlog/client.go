package eventlog

import (
	"context"
	"slices"

	"github.com/get-eventually/go-subscriber/checkpoint"
)

// StreamWrite is the write-only side of a channel of Entries.
type StreamWrite chan<- Entry

// StreamRead is the read-only side of a channel of Entries.
type StreamRead <-chan Entry

// Filter specifies which Entries should be delivered when opening the log.
type Filter struct {
	// Include, if not empty, is the list of the only Entry types to deliver.
	Include []string

	// Exclude is a list of Entry types that should never be delivered.
	Exclude []string

	// ResolveLinks replaces link records with the entries they point to.
	ResolveLinks bool
}

// Allows returns true if an Entry of the specified type passes the filter.
func (f Filter) Allows(entryType string) bool {
	if len(f.Include) > 0 && !slices.Contains(f.Include, entryType) {
		return false
	}

	return !slices.Contains(f.Exclude, entryType)
}

// Client is the capability of opening a live, ordered and potentially
// infinite stream of Entries from the Event Log.
//
// Subscribe delivers on the provided stream all the Entries strictly after
// the specified checkpoint, in log order, then keeps waiting for new ones.
// Implementations should be synchronous, returning only when the connection
// with the log fails or the context is canceled, and must close the stream
// before returning.
//
// The stream channel is provided in input as inversion of dependency,
// in order to allow to callers to choose the desired buffering on the channel,
// matching the caller concurrency properties.
type Client interface {
	Subscribe(ctx context.Context, stream StreamWrite, from checkpoint.Checkpoint, filter Filter) error
}

// ClientFunc is a functional implementation of the Client interface.
type ClientFunc func(ctx context.Context, stream StreamWrite, from checkpoint.Checkpoint, filter Filter) error

// Subscribe implements the eventlog.Client interface.
func (fn ClientFunc) Subscribe(
	ctx context.Context,
	stream StreamWrite,
	from checkpoint.Checkpoint,
	filter Filter,
) error {
	return fn(ctx, stream, from, filter)
}
