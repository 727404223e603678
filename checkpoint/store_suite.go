package checkpoint

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/get-eventually/go-subscriber/version"
)

// StoreSuite returns an executable testing suite running on the checkpoint.Store
// value provided in input.
//
// Every case uses a fresh Subscription identifier, so the suite can run
// against a shared, non-empty backend.
func StoreSuite(store Store) func(t *testing.T) {
	return func(t *testing.T) {
		ctx := context.Background()
		newID := func() string { return "suite-" + uuid.NewString() }

		t.Run("load returns none for an unknown subscription", func(t *testing.T) {
			got, err := store.Load(ctx, newID())
			require.NoError(t, err)
			assert.True(t, got.IsNone())
		})

		t.Run("compare-and-set advances the checkpoint when the expected value matches", func(t *testing.T) {
			id := newID()

			ok, err := store.CompareAndSet(ctx, id, None, At(2))
			require.NoError(t, err)
			require.True(t, ok)

			ok, err = store.CompareAndSet(ctx, id, At(2), At(5))
			require.NoError(t, err)
			require.True(t, ok)

			got, err := store.Load(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, At(5), got)
		})

		t.Run("compare-and-set fails when the expected value is stale", func(t *testing.T) {
			id := newID()

			ok, err := store.CompareAndSet(ctx, id, None, At(3))
			require.NoError(t, err)
			require.True(t, ok)

			ok, err = store.CompareAndSet(ctx, id, None, At(4))
			require.NoError(t, err)
			assert.False(t, ok)

			ok, err = store.CompareAndSet(ctx, id, At(1), At(4))
			require.NoError(t, err)
			assert.False(t, ok)

			got, err := store.Load(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, At(3), got)
		})

		t.Run("compare-and-set refuses to move backwards", func(t *testing.T) {
			id := newID()

			ok, err := store.CompareAndSet(ctx, id, None, At(10))
			require.NoError(t, err)
			require.True(t, ok)

			_, err = store.CompareAndSet(ctx, id, At(10), At(9))
			assert.ErrorIs(t, err, ErrNotMonotonic)

			_, err = store.CompareAndSet(ctx, id, At(10), None)
			assert.ErrorIs(t, err, ErrNotMonotonic)
		})

		t.Run("subscriptions do not share checkpoints", func(t *testing.T) {
			first, second := newID(), newID()

			ok, err := store.CompareAndSet(ctx, first, None, At(7))
			require.NoError(t, err)
			require.True(t, ok)

			got, err := store.Load(ctx, second)
			require.NoError(t, err)
			assert.True(t, got.IsNone())
		})

		t.Run("only one concurrent writer wins the same expected value", func(t *testing.T) {
			const writers = 8

			id := newID()
			wg := new(sync.WaitGroup)
			results := make(chan bool, writers)

			for i := 0; i < writers; i++ {
				wg.Add(1)

				go func(i int) {
					defer wg.Done()

					ok, err := store.CompareAndSet(ctx, id, None, At(version.SequenceNumber(i+1)))
					assert.NoError(t, err)
					results <- ok
				}(i)
			}

			wg.Wait()
			close(results)

			var successes int

			for ok := range results {
				if ok {
					successes++
				}
			}

			assert.Equal(t, 1, successes)
		})
	}
}
