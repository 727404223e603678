// Package subscriberpebble contains a checkpoint.Store implementation using
// Pebble, an embedded key-value store.
//
// Useful for single-process deployments that keep their projections
// on the local disk.
package subscriberpebble

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"

	"github.com/get-eventually/go-subscriber/checkpoint"
	"github.com/get-eventually/go-subscriber/version"
)

const keyPrefix = "checkpoint:"

var _ checkpoint.Store = new(CheckpointStore)

// CheckpointStore is a checkpoint.Store implementation using a Pebble database.
//
// Writes are synced to disk before CompareAndSet returns.
type CheckpointStore struct {
	db *pebble.DB

	// Pebble has no conditional write, so read-compare-write is serialized here.
	mx sync.Mutex
}

// NewCheckpointStore returns a CheckpointStore using the provided database,
// which should be owned and closed by the caller.
func NewCheckpointStore(db *pebble.DB) *CheckpointStore {
	return &CheckpointStore{db: db}
}

func key(id string) []byte { return []byte(keyPrefix + id) }

func (s *CheckpointStore) load(id string) (checkpoint.Checkpoint, error) {
	value, closer, err := s.db.Get(key(id))
	if errors.Is(err, pebble.ErrNotFound) {
		return checkpoint.None, nil
	}

	if err != nil {
		return checkpoint.None, fmt.Errorf("failed to get key, %w", err)
	}

	defer closer.Close()

	position, err := version.ParseSequenceNumber(string(value))
	if err != nil {
		return checkpoint.None, fmt.Errorf("invalid checkpoint value, %w", err)
	}

	return checkpoint.At(position), nil
}

// Load implements the checkpoint.Loader interface.
func (s *CheckpointStore) Load(_ context.Context, id string) (checkpoint.Checkpoint, error) {
	current, err := s.load(id)
	if err != nil {
		return checkpoint.None, fmt.Errorf("subscriberpebble.CheckpointStore.Load: %w", err)
	}

	return current, nil
}

// CompareAndSet implements the checkpoint.CompareAndSetter interface.
func (s *CheckpointStore) CompareAndSet(
	_ context.Context,
	id string,
	expected, next checkpoint.Checkpoint,
) (bool, error) {
	if err := checkpoint.ValidateAdvance(expected, next); err != nil {
		return false, fmt.Errorf("subscriberpebble.CheckpointStore.CompareAndSet: %w", err)
	}

	s.mx.Lock()
	defer s.mx.Unlock()

	current, err := s.load(id)
	if err != nil {
		return false, fmt.Errorf("subscriberpebble.CheckpointStore.CompareAndSet: %w", err)
	}

	if current != expected {
		return false, nil
	}

	if err := s.db.Set(key(id), []byte(next.String()), pebble.Sync); err != nil {
		return false, fmt.Errorf("subscriberpebble.CheckpointStore.CompareAndSet: failed to set key, %w", err)
	}

	return true, nil
}
