package subscription

import (
	"fmt"

	"github.com/get-eventually/go-subscriber/checkpoint"
	"github.com/get-eventually/go-subscriber/eventlog"
)

// CheckpointLoadError is returned when the checkpoint of a Subscription
// could not be loaded from the checkpoint.Store.
type CheckpointLoadError struct {
	SubscriptionID string
	Err            error
}

func (err *CheckpointLoadError) Error() string {
	return fmt.Sprintf("subscription: failed to load checkpoint for '%s', %v", err.SubscriptionID, err.Err)
}

func (err *CheckpointLoadError) Unwrap() error { return err.Err }

// CheckpointWriteError is returned when the next checkpoint of a Subscription
// could not be written to the checkpoint.Store.
//
// The write might have been applied anyway, e.g. when only the
// acknowledgement got lost.
type CheckpointWriteError struct {
	SubscriptionID string
	Next           checkpoint.Checkpoint
	Err            error
}

func (err *CheckpointWriteError) Error() string {
	return fmt.Sprintf(
		"subscription: failed to write checkpoint %s for '%s', %v",
		err.Next, err.SubscriptionID, err.Err,
	)
}

func (err *CheckpointWriteError) Unwrap() error { return err.Err }

// DecodeError is returned when an entry payload could not be decoded
// and decode errors are not tolerated.
type DecodeError struct {
	Entry eventlog.Entry
	Err   error
}

func (err *DecodeError) Error() string {
	return fmt.Sprintf(
		"subscription: failed to decode entry at position %d of type '%s', %v",
		err.Entry.Position, err.Entry.Type, err.Err,
	)
}

func (err *DecodeError) Unwrap() error { return err.Err }

// HandlerError is returned when the application Handler fails
// to handle an entry.
type HandlerError struct {
	Entry eventlog.Entry
	Err   error
}

func (err *HandlerError) Error() string {
	return fmt.Sprintf(
		"subscription: handler failed on entry at position %d of type '%s', %v",
		err.Entry.Position, err.Entry.Type, err.Err,
	)
}

func (err *HandlerError) Unwrap() error { return err.Err }

// MismatchError is returned by a Controller that found the persisted
// checkpoint different from the one it expected: another Controller is
// probably running for the same Subscription.
type MismatchError struct {
	SubscriptionID string
	Expected       checkpoint.Checkpoint
	Actual         checkpoint.Checkpoint
}

func (err *MismatchError) Error() string {
	return fmt.Sprintf(
		"subscription: checkpoint mismatch for '%s', expected: %s, actual: %s",
		err.SubscriptionID, err.Expected, err.Actual,
	)
}
