// Package subscriberfirestore contains a checkpoint.Store implementation
// using Google Cloud Firestore.
package subscriberfirestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/get-eventually/go-subscriber/checkpoint"
	"github.com/get-eventually/go-subscriber/version"
)

// Default values used by a CheckpointStore, if not specified.
const (
	DefaultCollection  = "SubscriptionCheckpoints"
	DefaultMaxAttempts = 20
)

//nolint:exhaustruct // Only used for interface assertion.
var _ checkpoint.Store = CheckpointStore{}

// CheckpointStore is a checkpoint.Store implementation using one Firestore
// document per Subscription.
//
// Compare-and-set is implemented using a Firestore transaction.
type CheckpointStore struct {
	Client *firestore.Client

	// Collection is the name of the collection holding the checkpoint documents.
	//
	// Defaults to DefaultCollection if unspecified.
	Collection string

	// MaxAttempts is the number of times a contended transaction is attempted
	// before CompareAndSet fails.
	//
	// Defaults to DefaultMaxAttempts if unspecified or negative.
	MaxAttempts int
}

func (s CheckpointStore) maxAttempts() int {
	if s.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}

	return s.MaxAttempts
}

type checkpointDocument struct {
	Position  int64 `firestore:"position"`
	UpdatedAt any   `firestore:"updated_at"`
}

func (s CheckpointStore) collection() *firestore.CollectionRef {
	if s.Collection == "" {
		return s.Client.Collection(DefaultCollection)
	}

	return s.Client.Collection(s.Collection)
}

func decode(doc *firestore.DocumentSnapshot) (checkpoint.Checkpoint, error) {
	var data checkpointDocument
	if err := doc.DataTo(&data); err != nil {
		return checkpoint.None, fmt.Errorf("failed to decode checkpoint document, %w", err)
	}

	return checkpoint.At(version.SequenceNumber(data.Position)), nil
}

// Load implements the checkpoint.Loader interface.
func (s CheckpointStore) Load(ctx context.Context, id string) (checkpoint.Checkpoint, error) {
	doc, err := s.collection().Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return checkpoint.None, nil
	}

	if err != nil {
		return checkpoint.None, fmt.Errorf("subscriberfirestore.CheckpointStore.Load: failed to get document, %w", err)
	}

	current, err := decode(doc)
	if err != nil {
		return checkpoint.None, fmt.Errorf("subscriberfirestore.CheckpointStore.Load: %w", err)
	}

	return current, nil
}

// CompareAndSet implements the checkpoint.CompareAndSetter interface.
func (s CheckpointStore) CompareAndSet(
	ctx context.Context,
	id string,
	expected, next checkpoint.Checkpoint,
) (bool, error) {
	if err := checkpoint.ValidateAdvance(expected, next); err != nil {
		return false, fmt.Errorf("subscriberfirestore.CheckpointStore.CompareAndSet: %w", err)
	}

	docRef := s.collection().Doc(id)
	position, _ := next.SequenceNumber()

	var swapped bool

	err := s.Client.RunTransaction(ctx, func(_ context.Context, tx *firestore.Transaction) error {
		swapped = false

		doc, err := tx.Get(docRef)
		if err != nil && status.Code(err) != codes.NotFound {
			return fmt.Errorf("failed to get document, %w", err)
		}

		current := checkpoint.None
		if err == nil {
			if current, err = decode(doc); err != nil {
				return err
			}
		}

		if current != expected {
			return nil
		}

		if err := tx.Set(docRef, checkpointDocument{
			Position:  int64(position),
			UpdatedAt: firestore.ServerTimestamp,
		}); err != nil {
			return fmt.Errorf("failed to set document, %w", err)
		}

		swapped = true

		return nil
	}, firestore.MaxAttempts(s.maxAttempts()))
	if err != nil {
		return false, fmt.Errorf("subscriberfirestore.CheckpointStore.CompareAndSet: failed to run transaction, %w", err)
	}

	return swapped, nil
}
