package eventlog

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// StreamToSlice synchronously exhausts a stream of Entries to a slice,
// and returns an error if the stream origin, passed here as a closure,
// fails with an error.
//
// The origin must close the stream when done.
func StreamToSlice(ctx context.Context, f func(ctx context.Context, stream StreamWrite) error) ([]Entry, error) {
	ch := make(chan Entry, 1)
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error { return f(ctx, ch) })

	var entries []Entry
	for entry := range ch {
		entries = append(entries, entry)
	}

	return entries, group.Wait()
}
