package subscription

import "github.com/get-eventually/go-subscriber/checkpoint"

// Outcome is the result of processing a Batch.
//
// This is a sealed interface: the only possible variants are
// Success, Ignored and Mismatch.
type Outcome interface {
	isOutcome()
}

// Success is returned when a Batch has been applied and the checkpoint
// has been advanced to the last entry of the Batch.
type Success struct {
	Checkpoint checkpoint.Checkpoint
}

func (Success) isOutcome() {}

// Ignored is returned when all the entries of a Batch had already been
// processed, according to the persisted checkpoint.
type Ignored struct{}

func (Ignored) isOutcome() {}

// Mismatch is returned when the persisted checkpoint is not the one
// expected, which means another writer is advancing the same Subscription.
type Mismatch struct {
	Expected checkpoint.Checkpoint
	Actual   checkpoint.Checkpoint
}

func (Mismatch) isOutcome() {}
