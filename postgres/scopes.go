package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/get-eventually/go-subscriber/subscription"
)

var _ subscription.ScopeFactory = Scopes{}

// Scopes is a subscription.ScopeFactory that acquires a connection from
// the pool for every Batch, and releases it once the Batch has been processed.
//
// The checkpoint is written using the same connection the Handler uses.
type Scopes struct {
	Pool *pgxpool.Pool

	// NewHandler builds the Handler for a single Batch, using
	// the acquired connection.
	NewHandler func(conn DBTX) subscription.Handler
}

// Acquire implements the subscription.ScopeFactory interface.
func (s Scopes) Acquire(ctx context.Context) (subscription.Scope, error) {
	conn, err := s.Pool.Acquire(ctx)
	if err != nil {
		return subscription.Scope{}, fmt.Errorf("postgres.Scopes: failed to acquire connection, %w", err)
	}

	return subscription.NewScope(s.NewHandler(conn), CheckpointStore{Conn: conn}, conn.Release), nil
}
