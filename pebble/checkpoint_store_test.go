package subscriberpebble_test

import (
	"context"
	"testing"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/get-eventually/go-subscriber/checkpoint"
	subscriberpebble "github.com/get-eventually/go-subscriber/pebble"
)

func TestCheckpointStore(t *testing.T) {
	fs := vfs.NewMem()

	db, err := pebble.Open("checkpoints", &pebble.Options{FS: fs})
	require.NoError(t, err)

	checkpoint.StoreSuite(subscriberpebble.NewCheckpointStore(db))(t)

	t.Run("it keeps checkpoints across reopening the database", func(t *testing.T) {
		ctx := context.Background()

		ok, err := subscriberpebble.NewCheckpointStore(db).CompareAndSet(ctx, "durable", checkpoint.None, checkpoint.At(9))
		require.NoError(t, err)
		require.True(t, ok)

		require.NoError(t, db.Close())

		db, err = pebble.Open("checkpoints", &pebble.Options{FS: fs})
		require.NoError(t, err)

		current, err := subscriberpebble.NewCheckpointStore(db).Load(ctx, "durable")
		require.NoError(t, err)
		assert.Equal(t, checkpoint.At(9), current)
	})

	assert.NoError(t, db.Close())
}
