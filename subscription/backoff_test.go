package subscription_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/get-eventually/go-subscriber/subscription"
)

func TestJitteredBackOff(t *testing.T) {
	t.Run("it waits for the base delay plus a bounded jitter", func(t *testing.T) {
		b := subscription.JitteredBackOff{Base: time.Second, Jitter: 500 * time.Millisecond}

		for i := 0; i < 100; i++ {
			delay := b.NextBackOff()
			assert.GreaterOrEqual(t, delay, time.Second)
			assert.Less(t, delay, 1500*time.Millisecond)
		}
	})

	t.Run("it waits for the base delay when there is no jitter", func(t *testing.T) {
		b := subscription.JitteredBackOff{Base: 20 * time.Millisecond}
		b.Reset()

		assert.Equal(t, 20*time.Millisecond, b.NextBackOff())
	})
}
