package checkpoint

import (
	"context"
	"errors"
	"fmt"
)

// Loader reads the last checkpoint written for a Subscription.
type Loader interface {
	// Load returns None if no checkpoint has been written yet
	// for the Subscription identified by id.
	Load(ctx context.Context, id string) (Checkpoint, error)
}

// CompareAndSetter advances the checkpoint of a Subscription.
type CompareAndSetter interface {
	// CompareAndSet atomically sets the checkpoint of the Subscription to next,
	// only if the currently stored checkpoint equals expected.
	//
	// The returned boolean reports whether the write happened. A false
	// value is a definitive answer, and must not be retried by callers.
	CompareAndSet(ctx context.Context, id string, expected, next Checkpoint) (bool, error)
}

// Store is a durable key-value mapping from a Subscription identifier
// to the last Checkpoint successfully processed.
type Store interface {
	Loader
	CompareAndSetter
}

// ErrNotMonotonic is returned by Store implementations when asked to move
// a checkpoint backwards, or to None.
var ErrNotMonotonic = errors.New("checkpoint: checkpoints can only move forward")

// ValidateAdvance checks that moving a checkpoint from expected to next
// does not go backwards. Store implementations should call it before writing.
func ValidateAdvance(expected, next Checkpoint) error {
	if next.IsNone() || next.Compare(expected) < 0 {
		return fmt.Errorf("%w: from %s to %s", ErrNotMonotonic, expected, next)
	}

	return nil
}
