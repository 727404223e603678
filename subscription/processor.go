package subscription

import (
	"context"
	"errors"
	"fmt"

	"github.com/get-eventually/go-subscriber/checkpoint"
	"github.com/get-eventually/go-subscriber/eventlog"
	"github.com/get-eventually/go-subscriber/logger"
)

// ErrEmptyBatch is returned when asking a Processor to process a Batch with no entries.
var ErrEmptyBatch = errors.New("subscription: empty batch")

// Processor applies the entries of a Batch to the application Handler,
// then advances the Subscription checkpoint using compare-and-set.
//
// Processor never retries: every failure and every Mismatch is
// returned to the caller immediately.
type Processor struct {
	SubscriptionID string
	Scopes         ScopeFactory
	Logger         logger.Logger

	// Decoder, if set, is used to decode the payload of every entry
	// before handing it to the Handler.
	Decoder Decoder

	// TolerateDecodeErrors skips the entries that cannot be decoded,
	// instead of failing the whole Batch.
	TolerateDecodeErrors bool
}

// Process processes the Batch, expecting the persisted checkpoint
// to be the one provided.
//
// Entries already covered by the persisted checkpoint are not handled again.
// If the persisted checkpoint is not the expected one, Mismatch is returned
// without handling any entry, even when the whole Batch is already covered.
func (p Processor) Process(ctx context.Context, batch Batch, expected checkpoint.Checkpoint) (Outcome, error) {
	if batch.Len() == 0 {
		return nil, ErrEmptyBatch
	}

	scope, err := p.Scopes.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("subscription.Processor: failed to acquire scope, %w", err)
	}

	defer scope.Release()

	current, err := scope.Checkpoints.Load(ctx, p.SubscriptionID)
	if err != nil {
		return nil, fmt.Errorf("subscription.Processor: failed to load checkpoint, %w", err)
	}

	if current != expected {
		return Mismatch{Expected: expected, Actual: current}, nil
	}

	pending := batch.After(current)
	if len(pending) == 0 {
		logger.Debug(p.Logger, "batch already processed, ignoring",
			logger.With("checkpoint", current),
			logger.With("batchLast", batch.Last()),
		)

		return Ignored{}, nil
	}

	for _, entry := range pending {
		if err := p.handle(ctx, scope.Handler, entry); err != nil {
			return nil, err
		}
	}

	next := checkpoint.At(batch.Last())

	ok, err := scope.Checkpoints.CompareAndSet(ctx, p.SubscriptionID, expected, next)
	if err != nil {
		return nil, &CheckpointWriteError{SubscriptionID: p.SubscriptionID, Next: next, Err: err}
	}

	if !ok {
		actual, err := scope.Checkpoints.Load(ctx, p.SubscriptionID)
		if err != nil {
			return nil, fmt.Errorf("subscription.Processor: failed to reload checkpoint after mismatch, %w", err)
		}

		return Mismatch{Expected: expected, Actual: actual}, nil
	}

	return Success{Checkpoint: next}, nil
}

func (p Processor) handle(ctx context.Context, handler Handler, entry eventlog.Entry) error {
	event := Event{Entry: entry}

	if p.Decoder != nil {
		msg, err := p.Decoder.Deserialize(entry.Type, entry.Data)
		if err != nil && !p.TolerateDecodeErrors {
			return &DecodeError{Entry: entry, Err: err}
		}

		if err != nil {
			logger.Warn(p.Logger, "skipping entry that could not be decoded",
				logger.With("position", entry.Position),
				logger.With("type", entry.Type),
				logger.With("error", err),
			)

			return nil
		}

		event.Message = msg
	}

	if err := handler.Handle(ctx, event); err != nil {
		return &HandlerError{Entry: entry, Err: err}
	}

	return nil
}
