package eventlog_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/get-eventually/go-subscriber/checkpoint"
	"github.com/get-eventually/go-subscriber/eventlog"
	"github.com/get-eventually/go-subscriber/version"
)

func entry(typ, data string) eventlog.Entry {
	return eventlog.Entry{Type: typ, StreamID: "test-stream", Data: []byte(data)}
}

func positions(entries []eventlog.Entry) []version.SequenceNumber {
	result := make([]version.SequenceNumber, 0, len(entries))
	for _, e := range entries {
		result = append(result, e.Position)
	}

	return result
}

// collect subscribes to the log and returns the first n entries received.
func collect(
	ctx context.Context,
	t *testing.T,
	log eventlog.Client,
	from checkpoint.Checkpoint,
	filter eventlog.Filter,
	n int,
) []eventlog.Entry {
	t.Helper()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	stream := make(chan eventlog.Entry, 1)
	errc := make(chan error, 1)

	go func() { errc <- log.Subscribe(ctx, stream, from, filter) }()

	var received []eventlog.Entry

	for e := range stream {
		received = append(received, e)
		if len(received) == n {
			cancel()
		}
	}

	err := <-errc
	require.True(t, errors.Is(err, context.Canceled), "err", err)

	return received
}

func TestInMemoryLog(t *testing.T) {
	ctx := context.Background()

	t.Run("append assigns positions, ids and timestamps", func(t *testing.T) {
		now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		log := eventlog.NewInMemoryLog()
		log.Clock = func() time.Time { return now }

		last, err := log.Append(ctx, entry("a", "1"), entry("b", "2"))
		require.NoError(t, err)
		assert.EqualValues(t, 2, last)
		assert.Equal(t, 2, log.Len())

		received := collect(ctx, t, log, checkpoint.None, eventlog.Filter{}, 2)
		require.Len(t, received, 2)

		for i, e := range received {
			assert.EqualValues(t, i+1, e.Position)
			assert.NotEmpty(t, e.ID)
			assert.Equal(t, now, e.RecordedAt)
		}
	})

	t.Run("append of no entries fails", func(t *testing.T) {
		_, err := eventlog.NewInMemoryLog().Append(ctx)
		assert.ErrorIs(t, err, eventlog.ErrEmptyAppend)
	})

	t.Run("subscribe delivers entries strictly after the checkpoint", func(t *testing.T) {
		log := eventlog.NewInMemoryLog()

		for i := 0; i < 5; i++ {
			_, err := log.Append(ctx, entry("a", "x"))
			require.NoError(t, err)
		}

		received := collect(ctx, t, log, checkpoint.At(2), eventlog.Filter{}, 3)
		assert.Equal(t, []version.SequenceNumber{3, 4, 5}, positions(received))
	})

	t.Run("subscribe tails entries appended after it started", func(t *testing.T) {
		log := eventlog.NewInMemoryLog()

		_, err := log.Append(ctx, entry("a", "1"))
		require.NoError(t, err)

		go func() {
			<-time.After(20 * time.Millisecond)

			_, err := log.Append(ctx, entry("a", "2"), entry("a", "3"))
			assert.NoError(t, err)
		}()

		received := collect(ctx, t, log, checkpoint.None, eventlog.Filter{}, 3)
		assert.Equal(t, []version.SequenceNumber{1, 2, 3}, positions(received))
	})

	t.Run("filters are applied by entry type", func(t *testing.T) {
		log := eventlog.NewInMemoryLog()

		_, err := log.Append(ctx, entry("a", "1"), entry("b", "2"), entry("c", "3"), entry("a", "4"))
		require.NoError(t, err)

		received := collect(ctx, t, log, checkpoint.None, eventlog.Filter{Include: []string{"a", "c"}}, 3)
		assert.Equal(t, []version.SequenceNumber{1, 3, 4}, positions(received))

		received = collect(ctx, t, log, checkpoint.None, eventlog.Filter{Exclude: []string{"a"}}, 2)
		assert.Equal(t, []version.SequenceNumber{2, 3}, positions(received))
	})

	t.Run("links are resolved only when requested", func(t *testing.T) {
		log := eventlog.NewInMemoryLog()

		_, err := log.Append(ctx, entry("a", "payload"), eventlog.NewLink("projection", 1))
		require.NoError(t, err)

		received := collect(ctx, t, log, checkpoint.At(1), eventlog.Filter{}, 1)
		require.Len(t, received, 1)
		assert.True(t, received[0].IsLink())
		assert.Nil(t, received[0].Link)

		received = collect(ctx, t, log, checkpoint.At(1), eventlog.Filter{ResolveLinks: true}, 1)
		require.Len(t, received, 1)
		assert.Equal(t, "a", received[0].Type)
		assert.Equal(t, []byte("payload"), received[0].Data)
		assert.EqualValues(t, 2, received[0].Position)
		require.NotNil(t, received[0].Link)
		assert.EqualValues(t, 2, received[0].Link.Position)
		assert.Equal(t, "projection", received[0].Link.StreamID)
	})

	t.Run("unresolvable links are delivered as links", func(t *testing.T) {
		log := eventlog.NewInMemoryLog()

		_, err := log.Append(ctx, eventlog.NewLink("projection", 42))
		require.NoError(t, err)

		received := collect(ctx, t, log, checkpoint.None, eventlog.Filter{ResolveLinks: true}, 1)
		require.Len(t, received, 1)
		assert.True(t, received[0].IsLink())

		target, err := received[0].LinkTarget()
		require.NoError(t, err)
		assert.EqualValues(t, 42, target)
	})
}

func TestStreamToSlice(t *testing.T) {
	ctx := context.Background()

	entries, err := eventlog.StreamToSlice(ctx, func(ctx context.Context, stream eventlog.StreamWrite) error {
		defer close(stream)

		stream <- eventlog.Entry{Position: 1}
		stream <- eventlog.Entry{Position: 2}

		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []version.SequenceNumber{1, 2}, positions(entries))

	expectedErr := errors.New("connection dropped")

	_, err = eventlog.StreamToSlice(ctx, func(ctx context.Context, stream eventlog.StreamWrite) error {
		defer close(stream)

		return expectedErr
	})

	assert.ErrorIs(t, err, expectedErr)
}
