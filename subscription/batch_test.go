package subscription_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/get-eventually/go-subscriber/checkpoint"
	"github.com/get-eventually/go-subscriber/eventlog"
	"github.com/get-eventually/go-subscriber/subscription"
	"github.com/get-eventually/go-subscriber/version"
)

func filledStream(n int, closed bool) chan eventlog.Entry {
	stream := make(chan eventlog.Entry, n)
	for _, entry := range makeEntries(n) {
		stream <- entry
	}

	if closed {
		close(stream)
	}

	return stream
}

func TestBatcher(t *testing.T) {
	ctx := context.Background()

	t.Run("it groups entries in order into batches of the configured size", func(t *testing.T) {
		stream := filledStream(5, true)
		batcher := subscription.Batcher{Size: 2}

		var batches [][]version.SequenceNumber

		for {
			batch, err := batcher.Next(ctx, stream)
			if err != nil {
				require.ErrorIs(t, err, subscription.ErrStreamClosed)
				break
			}

			batches = append(batches, positions(batch.Entries))
		}

		assert.Equal(t, [][]version.SequenceNumber{{1, 2}, {3, 4}, {5}}, batches)
	})

	t.Run("it returns one entry per batch with size 1", func(t *testing.T) {
		stream := filledStream(3, true)
		batcher := subscription.Batcher{Size: 1}

		for i := 1; i <= 3; i++ {
			batch, err := batcher.Next(ctx, stream)
			require.NoError(t, err)
			assert.Equal(t, []version.SequenceNumber{version.SequenceNumber(i)}, positions(batch.Entries))
		}
	})

	t.Run("it uses size 1 when no size has been specified", func(t *testing.T) {
		batch, err := subscription.Batcher{}.Next(ctx, filledStream(2, true))
		require.NoError(t, err)
		assert.Equal(t, 1, batch.Len())
	})

	t.Run("it does not wait to fill a batch", func(t *testing.T) {
		stream := filledStream(2, false)

		batch, err := subscription.Batcher{Size: 10}.Next(ctx, stream)
		require.NoError(t, err)
		assert.Equal(t, []version.SequenceNumber{1, 2}, positions(batch.Entries))
	})

	t.Run("it returns an error when the stream is closed with no pending entries", func(t *testing.T) {
		_, err := subscription.Batcher{Size: 2}.Next(ctx, filledStream(0, true))
		assert.ErrorIs(t, err, subscription.ErrStreamClosed)
	})

	t.Run("it stops waiting when the context is canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := subscription.Batcher{Size: 2}.Next(ctx, filledStream(0, false))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestBatch(t *testing.T) {
	batch := subscription.Batch{Entries: makeEntries(4)}

	assert.Equal(t, 4, batch.Len())
	assert.EqualValues(t, 4, batch.Last())
	assert.EqualValues(t, 0, subscription.Batch{}.Last())

	assert.Equal(t, []version.SequenceNumber{1, 2, 3, 4}, positions(batch.After(checkpoint.None)))
	assert.Equal(t, []version.SequenceNumber{3, 4}, positions(batch.After(checkpoint.At(2))))
	assert.Empty(t, batch.After(checkpoint.At(4)))
	assert.Empty(t, batch.After(checkpoint.At(7)))
}
