package checkpoint

import (
	"context"
	"sync"
)

var _ Store = new(InMemoryStore)

// InMemoryStore is a thread-safe, in-memory checkpoint.Store implementation.
//
// Useful for tests, or for Subscriptions whose progress should not survive
// process restarts.
type InMemoryStore struct {
	mx          sync.RWMutex
	checkpoints map[string]Checkpoint
}

// NewInMemoryStore creates a new, empty checkpoint.InMemoryStore instance.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		checkpoints: make(map[string]Checkpoint),
	}
}

// Load implements the checkpoint.Loader interface.
func (s *InMemoryStore) Load(_ context.Context, id string) (Checkpoint, error) {
	s.mx.RLock()
	defer s.mx.RUnlock()

	return s.checkpoints[id], nil
}

// CompareAndSet implements the checkpoint.CompareAndSetter interface.
func (s *InMemoryStore) CompareAndSet(_ context.Context, id string, expected, next Checkpoint) (bool, error) {
	if err := ValidateAdvance(expected, next); err != nil {
		return false, err
	}

	s.mx.Lock()
	defer s.mx.Unlock()

	if s.checkpoints[id] != expected {
		return false, nil
	}

	s.checkpoints[id] = next

	return true, nil
}
