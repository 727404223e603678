package correlation_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/get-eventually/go-subscriber/correlation"
	"github.com/get-eventually/go-subscriber/eventlog"
	"github.com/get-eventually/go-subscriber/message"
	"github.com/get-eventually/go-subscriber/subscription"
)

func TestHandlerWrapper(t *testing.T) {
	ctx := context.Background()

	var (
		correlationID, causationID   string
		hasCorrelation, hasCausation bool
	)

	handler := correlation.WrapHandler(subscription.HandlerFunc(func(ctx context.Context, _ subscription.Event) error {
		correlationID, hasCorrelation = correlation.IDFromContext(ctx)
		causationID, hasCausation = correlation.CausationIDFromContext(ctx)

		return nil
	}))

	t.Run("it uses the entry id as causation when there is no correlation data", func(t *testing.T) {
		err := handler.Handle(ctx, subscription.Event{Entry: eventlog.Entry{ID: "entry-1"}})
		require.NoError(t, err)

		assert.False(t, hasCorrelation)
		assert.Empty(t, correlationID)
		assert.True(t, hasCausation)
		assert.Equal(t, "entry-1", causationID)
	})

	t.Run("it extends the context with the correlation data in the entry metadata", func(t *testing.T) {
		err := handler.Handle(ctx, subscription.Event{Entry: eventlog.Entry{
			ID: "entry-2",
			Metadata: message.Metadata{}.
				With(correlation.CorrelationIDKey, "request-1").
				With(correlation.EventIDKey, "event-2"),
		}})
		require.NoError(t, err)

		assert.True(t, hasCorrelation)
		assert.Equal(t, "request-1", correlationID)
		assert.Equal(t, "event-2", causationID)
	})
}
