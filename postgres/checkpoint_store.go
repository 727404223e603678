package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/get-eventually/go-subscriber/checkpoint"
	"github.com/get-eventually/go-subscriber/version"
)

// DBTX is the subset of the pgx API used by the components in this package.
//
// *pgxpool.Pool, *pgxpool.Conn, *pgx.Conn and pgx.Tx all satisfy this interface.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ checkpoint.Store = CheckpointStore{}

// CheckpointStore is a checkpoint.Store implementation using the
// "subscription_checkpoints" table.
//
// A Subscription without a checkpoint has no row in the table.
type CheckpointStore struct {
	Conn DBTX
}

// Load implements the checkpoint.Loader interface.
func (s CheckpointStore) Load(ctx context.Context, id string) (checkpoint.Checkpoint, error) {
	var position int64

	err := s.Conn.QueryRow(
		ctx,
		"SELECT position FROM subscription_checkpoints WHERE subscription_id = $1",
		id,
	).Scan(&position)

	if errors.Is(err, pgx.ErrNoRows) {
		return checkpoint.None, nil
	}

	if err != nil {
		return checkpoint.None, fmt.Errorf("postgres.CheckpointStore: failed to load checkpoint, %w", err)
	}

	return checkpoint.At(version.SequenceNumber(position)), nil
}

// CompareAndSet implements the checkpoint.CompareAndSetter interface.
func (s CheckpointStore) CompareAndSet(
	ctx context.Context,
	id string,
	expected, next checkpoint.Checkpoint,
) (bool, error) {
	if err := checkpoint.ValidateAdvance(expected, next); err != nil {
		return false, fmt.Errorf("postgres.CheckpointStore: %w", err)
	}

	nextPosition, _ := next.SequenceNumber()

	var (
		tag pgconn.CommandTag
		err error
	)

	if expectedPosition, ok := expected.SequenceNumber(); ok {
		tag, err = s.Conn.Exec(
			ctx,
			`UPDATE subscription_checkpoints
			SET position = $3, updated_at = NOW()
			WHERE subscription_id = $1 AND position = $2`,
			id, int64(expectedPosition), int64(nextPosition),
		)
	} else {
		tag, err = s.Conn.Exec(
			ctx,
			`INSERT INTO subscription_checkpoints (subscription_id, position)
			VALUES ($1, $2)
			ON CONFLICT (subscription_id) DO NOTHING`,
			id, int64(nextPosition),
		)
	}

	if err != nil {
		return false, fmt.Errorf("postgres.CheckpointStore: failed to write checkpoint, %w", err)
	}

	return tag.RowsAffected() == 1, nil
}
