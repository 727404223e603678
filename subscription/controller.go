package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/get-eventually/go-subscriber/checkpoint"
	"github.com/get-eventually/go-subscriber/eventlog"
	"github.com/get-eventually/go-subscriber/logger"
)

// ErrBackOffExhausted is returned by a Controller when its backoff.BackOff
// policy gave up on reconnecting to the Event Log.
var ErrBackOffExhausted = errors.New("subscription: reconnect backoff exhausted")

var errStreamEnded = errors.New("event log stream ended")

// Controller runs a Subscription: it opens the Event Log from the last
// persisted checkpoint, groups the received entries into Batches and hands
// them to a Processor, reconnecting when the Event Log connection drops.
//
// Only one Controller should run for the same Subscription at any time.
// When a Controller finds out the checkpoint has been moved by someone else,
// it stops with a *MismatchError.
type Controller struct {
	Options Options
	Log     eventlog.Client
	Scopes  ScopeFactory
	Decoder Decoder
	Logger  logger.Logger

	// Backoff is the policy used to wait before reconnecting to the Event Log.
	//
	// Defaults to a JitteredBackOff using the ReconnectDelay and
	// ReconnectJitter values in the Options.
	Backoff backoff.BackOff
}

// cursor is the last known-good checkpoint of a running Controller.
//
// unacked is the checkpoint of the last failed write, which might have been
// persisted nonetheless.
type cursor struct {
	checkpoint checkpoint.Checkpoint
	known      bool

	unacked    checkpoint.Checkpoint
	hasUnacked bool
}

// accepts reports whether the loaded checkpoint can be resumed from.
func (cur cursor) accepts(loaded checkpoint.Checkpoint) bool {
	return !cur.known ||
		loaded == cur.checkpoint ||
		(cur.hasUnacked && loaded == cur.unacked)
}

func (c *Controller) backOff() backoff.BackOff {
	if c.Backoff != nil {
		return c.Backoff
	}

	return JitteredBackOff{
		Base:   c.Options.ReconnectDelay,
		Jitter: c.Options.ReconnectJitter,
	}
}

// Run runs the Subscription until the context is canceled, in which case
// nil is returned, or until an unrecoverable error happens.
//
// Connection failures, checkpoint.Store failures and Handler failures are
// recovered by reconnecting after a delay, resuming from the last
// known-good checkpoint.
func (c *Controller) Run(ctx context.Context) error {
	if err := c.Options.Validate(); err != nil {
		return fmt.Errorf("subscription.Controller: failed to start, %w", err)
	}

	if c.Log == nil || c.Scopes == nil {
		return errors.New("subscription.Controller: event log and scopes are required")
	}

	log := logger.Fields(c.Logger,
		logger.With("subscriptionId", c.Options.ID),
		logger.With("instanceId", uuid.NewString()),
	)

	processor := Processor{
		SubscriptionID:       c.Options.ID,
		Scopes:               c.Scopes,
		Logger:               log,
		Decoder:              c.Decoder,
		TolerateDecodeErrors: c.Options.TolerateDecodeErrors,
	}

	b := c.backOff()
	b.Reset()

	var cur cursor

	logger.Info(log, "subscription is starting up",
		logger.With("batchSize", c.Options.BatchSize),
		logger.With("resolveLinks", c.Options.Filter.ResolveLinks),
	)

	for {
		err := c.run(ctx, log, processor, b, &cur)

		var mismatch *MismatchError

		switch {
		case errors.As(err, &mismatch):
			logger.Error(log, "checkpoint mismatch, multiple subscribers may be active",
				logger.With("expected", mismatch.Expected),
				logger.With("actual", mismatch.Actual),
			)

			return err

		case ctx.Err() != nil:
			logger.Info(log, "subscription stopped", logger.With("checkpoint", cur.checkpoint))
			return nil

		case isFatal(err):
			logger.Error(log, "subscription stopped", logger.With("error", err))
			return err
		}

		var writeErr *CheckpointWriteError
		if errors.As(err, &writeErr) {
			cur.unacked, cur.hasUnacked = writeErr.Next, true
		}

		delay := b.NextBackOff()
		if delay == backoff.Stop {
			logger.Error(log, "giving up on reconnecting", logger.With("error", err))
			return fmt.Errorf("subscription.Controller: %w, last error: %w", ErrBackOffExhausted, err)
		}

		logger.Warn(log, "subscription interrupted, reconnecting",
			logger.With("error", err),
			logger.With("delay", delay),
			logger.With("checkpoint", cur.checkpoint),
		)

		if !sleep(ctx, delay) {
			logger.Info(log, "subscription stopped", logger.With("checkpoint", cur.checkpoint))
			return nil
		}
	}
}

func isFatal(err error) bool {
	var decodeErr *DecodeError
	return errors.As(err, &decodeErr)
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// run performs a single attempt: it loads the checkpoint, opens the Event Log
// and processes Batches until the Event Log stream ends or a failure happens.
func (c *Controller) run(
	ctx context.Context,
	log logger.Logger,
	processor Processor,
	b backoff.BackOff,
	cur *cursor,
) error {
	loaded, err := c.load(ctx)
	if err != nil {
		return err
	}

	if !cur.accepts(loaded) {
		return &MismatchError{
			SubscriptionID: c.Options.ID,
			Expected:       cur.checkpoint,
			Actual:         loaded,
		}
	}

	if cur.known && loaded != cur.checkpoint {
		logger.Warn(log, "failed checkpoint write was applied, resuming from it",
			logger.With("previous", cur.checkpoint),
			logger.With("checkpoint", loaded),
		)
	}

	cur.checkpoint, cur.known = loaded, true
	cur.hasUnacked = false

	logger.Debug(log, "opening event log", logger.With("from", loaded))

	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream := make(chan eventlog.Entry, c.Options.BufferSize)

	var group errgroup.Group

	group.Go(func() error {
		defer cancel()
		return c.Log.Subscribe(streamCtx, stream, loaded, c.Options.Filter)
	})

	consumeErr := c.consume(streamCtx, ctx, stream, processor, b, cur)

	cancel()

	streamErr := group.Wait()

	if consumeErr != nil &&
		!errors.Is(consumeErr, ErrStreamClosed) &&
		!errors.Is(consumeErr, context.Canceled) {
		return consumeErr
	}

	if streamErr != nil {
		return fmt.Errorf("subscription.Controller: event log stream failed, %w", streamErr)
	}

	return errStreamEnded
}

func (c *Controller) load(ctx context.Context) (checkpoint.Checkpoint, error) {
	scope, err := c.Scopes.Acquire(ctx)
	if err != nil {
		return checkpoint.None, &CheckpointLoadError{SubscriptionID: c.Options.ID, Err: err}
	}

	defer scope.Release()

	loaded, err := scope.Checkpoints.Load(ctx, c.Options.ID)
	if err != nil {
		return checkpoint.None, &CheckpointLoadError{SubscriptionID: c.Options.ID, Err: err}
	}

	return loaded, nil
}

// consume reads Batches from the stream using streamCtx, and processes them
// using ctx, so that a Batch being processed is not interrupted by the
// Event Log connection dropping.
func (c *Controller) consume(
	streamCtx, ctx context.Context,
	stream eventlog.StreamRead,
	processor Processor,
	b backoff.BackOff,
	cur *cursor,
) error {
	batcher := Batcher{Size: c.Options.BatchSize}

	for {
		batch, err := batcher.Next(streamCtx, stream)
		if err != nil {
			return err
		}

		outcome, err := processor.Process(ctx, batch, cur.checkpoint)
		if err != nil {
			return err
		}

		switch outcome := outcome.(type) {
		case Success:
			logger.Debug(processor.Logger, "batch processed",
				logger.With("entries", batch.Len()),
				logger.With("checkpoint", outcome.Checkpoint),
			)

			cur.checkpoint = outcome.Checkpoint
			b.Reset()

		case Ignored:

		case Mismatch:
			return &MismatchError{
				SubscriptionID: c.Options.ID,
				Expected:       outcome.Expected,
				Actual:         outcome.Actual,
			}
		}
	}
}
