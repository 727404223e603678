package subscriberredis_test

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/get-eventually/go-subscriber/checkpoint"
	subscriberredis "github.com/get-eventually/go-subscriber/redis"
)

func TestCheckpointStore(t *testing.T) {
	if testing.Short() {
		t.SkipNow()
	}

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)

	t.Cleanup(func() { assert.NoError(t, container.Terminate(ctx)) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { assert.NoError(t, client.Close()) })

	require.NoError(t, client.Ping(ctx).Err())

	checkpoint.StoreSuite(subscriberredis.CheckpointStore{Client: client})(t)

	t.Run("it stores checkpoints as decimal strings under the key prefix", func(t *testing.T) {
		store := subscriberredis.CheckpointStore{Client: client, KeyPrefix: "projections:"}

		ok, err := store.CompareAndSet(ctx, "carts", checkpoint.None, checkpoint.At(42))
		require.NoError(t, err)
		require.True(t, ok)

		value, err := client.Get(ctx, "projections:carts").Result()
		require.NoError(t, err)
		assert.Equal(t, "42", value)
	})

	t.Run("it fails to load malformed checkpoints", func(t *testing.T) {
		require.NoError(t, client.Set(ctx, subscriberredis.DefaultKeyPrefix+"malformed", "abc", 0).Err())

		_, err := subscriberredis.CheckpointStore{Client: client}.Load(ctx, "malformed")
		assert.Error(t, err)
	})
}
