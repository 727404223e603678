package internal

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// TxBeginner represents a pgx-related component that can initiate transactions.
type TxBeginner interface {
	BeginTx(ctx context.Context, options pgx.TxOptions) (pgx.Tx, error)
}

// WithTableLock runs do in a read-write transaction holding an exclusive lock
// on the given table, so that concurrent writers to that table are serialized
// while readers are not blocked.
//
// The transaction is rolled back when do fails, committed otherwise.
func WithTableLock[T any](
	ctx context.Context,
	db TxBeginner,
	table string,
	do func(ctx context.Context, tx pgx.Tx) (T, error),
) (result T, err error) {
	var zero T

	tx, err := db.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return zero, fmt.Errorf("failed to begin transaction, %w", err)
	}

	defer func() {
		if err == nil {
			return
		}

		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
			err = fmt.Errorf("failed to rollback transaction, %w (caused by: %w)", rollbackErr, err)
		}
	}()

	lock := fmt.Sprintf("LOCK TABLE %s IN EXCLUSIVE MODE", pgx.Identifier{table}.Sanitize())
	if _, err := tx.Exec(ctx, lock); err != nil {
		return zero, fmt.Errorf("failed to lock table %s, %w", table, err)
	}

	result, err = do(ctx, tx)
	if err != nil {
		return zero, err
	}

	if err := tx.Commit(ctx); err != nil {
		return zero, fmt.Errorf("failed to commit transaction, %w", err)
	}

	return result, nil
}
