package subscription

import (
	"context"
	"errors"
	"fmt"

	"github.com/get-eventually/go-subscriber/checkpoint"
	"github.com/get-eventually/go-subscriber/eventlog"
	"github.com/get-eventually/go-subscriber/version"
)

// ErrStreamClosed is returned by a Batcher when the stream of entries
// has been closed by the Event Log, and no entries are left to batch.
var ErrStreamClosed = errors.New("subscription: event log stream closed")

// Batch is an ordered, non-empty group of consecutive entries,
// processed and checkpointed as a single unit.
type Batch struct {
	Entries []eventlog.Entry
}

// Len returns the number of entries in the Batch.
func (b Batch) Len() int { return len(b.Entries) }

// Last returns the position of the last entry of the Batch, which is the
// checkpoint to persist once the Batch has been processed.
func (b Batch) Last() version.SequenceNumber {
	if len(b.Entries) == 0 {
		return 0
	}

	return b.Entries[len(b.Entries)-1].Position
}

// After returns the entries of the Batch not covered by the provided checkpoint.
func (b Batch) After(c checkpoint.Checkpoint) []eventlog.Entry {
	for i, entry := range b.Entries {
		if !c.Covers(entry.Position) {
			return b.Entries[i:]
		}
	}

	return nil
}

// Batcher groups the entries received from an Event Log stream into Batches
// of at most Size entries.
//
// Batcher never waits to fill a Batch: if no entry is immediately available
// on the stream, the entries received so far are returned as a partial Batch.
type Batcher struct {
	Size int
}

func (b Batcher) size() int {
	if b.Size <= 0 {
		return DefaultBatchSize
	}

	return b.Size
}

// Next blocks until at least one entry is available on the stream,
// then returns the next Batch.
//
// ErrStreamClosed is returned once the stream has been closed and drained,
// and the context error if the context is done while waiting.
func (b Batcher) Next(ctx context.Context, stream eventlog.StreamRead) (Batch, error) {
	size := b.size()
	entries := make([]eventlog.Entry, 0, size)

	select {
	case <-ctx.Done():
		return Batch{}, fmt.Errorf("subscription.Batcher: context error, %w", ctx.Err())
	case entry, ok := <-stream:
		if !ok {
			return Batch{}, ErrStreamClosed
		}

		entries = append(entries, entry)
	}

	for len(entries) < size {
		select {
		case entry, ok := <-stream:
			if !ok {
				return Batch{Entries: entries}, nil
			}

			entries = append(entries, entry)
		default:
			return Batch{Entries: entries}, nil
		}
	}

	return Batch{Entries: entries}, nil
}
