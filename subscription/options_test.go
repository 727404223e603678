package subscription_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/get-eventually/go-subscriber/eventlog"
	"github.com/get-eventually/go-subscriber/subscription"
)

func TestNewOptions(t *testing.T) {
	t.Run("it uses the default values", func(t *testing.T) {
		opts, err := subscription.NewOptions("projection")
		require.NoError(t, err)

		assert.Equal(t, subscription.Options{
			ID:                   "projection",
			BatchSize:            1,
			TolerateDecodeErrors: true,
			ReconnectDelay:       time.Second,
			ReconnectJitter:      time.Second,
			BufferSize:           subscription.DefaultBufferSize,
		}, opts)
	})

	t.Run("it applies the provided options", func(t *testing.T) {
		opts, err := subscription.NewOptions("projection",
			subscription.WithBatchSize(50),
			subscription.WithEventTypes("ItemAdded", "ItemRemoved"),
			subscription.WithoutEventTypes("ItemRenamed"),
			subscription.WithResolveLinks(true),
			subscription.WithDecodeErrorTolerance(false),
			subscription.WithReconnectDelay(100*time.Millisecond, 0),
			subscription.WithBufferSize(0),
		)
		require.NoError(t, err)

		assert.Equal(t, 50, opts.BatchSize)
		assert.Equal(t, eventlog.Filter{
			Include:      []string{"ItemAdded", "ItemRemoved"},
			Exclude:      []string{"ItemRenamed"},
			ResolveLinks: true,
		}, opts.Filter)
		assert.False(t, opts.TolerateDecodeErrors)
		assert.Equal(t, 100*time.Millisecond, opts.ReconnectDelay)
		assert.Zero(t, opts.ReconnectJitter)
		assert.Zero(t, opts.BufferSize)
	})

	t.Run("it rejects invalid options", func(t *testing.T) {
		_, err := subscription.NewOptions("")
		assert.Error(t, err)

		_, err = subscription.NewOptions("projection", subscription.WithBatchSize(0))
		assert.Error(t, err)

		_, err = subscription.NewOptions("projection", subscription.WithBufferSize(-1))
		assert.Error(t, err)

		_, err = subscription.NewOptions("projection", subscription.WithReconnectDelay(-time.Second, 0))
		assert.Error(t, err)
	})
}
