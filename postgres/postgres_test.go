package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/get-eventually/go-subscriber/postgres"
	"github.com/get-eventually/go-subscriber/postgres/internal"
)

func newContainer(t *testing.T) *internal.PostgresContainer {
	t.Helper()

	if testing.Short() {
		t.SkipNow()
	}

	ctx := context.Background()

	container, err := internal.NewPostgresContainer(ctx, postgres.RunMigrations)
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, container.Close(ctx))
	})

	return container
}

func TestRunMigrations(t *testing.T) {
	container := newContainer(t)

	// Migrations have already been applied by the container setup.
	require.NoError(t, postgres.RunMigrations(container.ConnectionDSN))

	var applied int

	err := container.Pool.QueryRow(
		context.Background(),
		"SELECT COUNT(*) FROM "+postgres.MigrationsTable,
	).Scan(&applied)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
}
