// Package subscriberredis contains a checkpoint.Store implementation using Redis.
package subscriberredis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/get-eventually/go-subscriber/checkpoint"
	"github.com/get-eventually/go-subscriber/version"
)

// DefaultKeyPrefix is the prefix of the keys holding the checkpoints, if not specified.
const DefaultKeyPrefix = "subscription:checkpoint:"

// compareAndSet atomically replaces the value at KEYS[1] with ARGV[2],
// if the current value is ARGV[1]. An empty ARGV[1] expects no value.
var compareAndSet = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if ARGV[1] == '' then
	if current then
		return 0
	end
elseif current ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2])
return 1
`)

//nolint:exhaustruct // Only used for interface assertion.
var _ checkpoint.Store = CheckpointStore{}

// CheckpointStore is a checkpoint.Store implementation storing
// every checkpoint as a decimal string value.
//
// Compare-and-set is implemented with a Lua script, which Redis runs atomically.
type CheckpointStore struct {
	Client redis.UniversalClient

	// KeyPrefix is prepended to the Subscription identifier to build its key.
	//
	// Defaults to DefaultKeyPrefix if unspecified.
	KeyPrefix string
}

func (s CheckpointStore) key(id string) string {
	if s.KeyPrefix == "" {
		return DefaultKeyPrefix + id
	}

	return s.KeyPrefix + id
}

func encode(c checkpoint.Checkpoint) string {
	if c.IsNone() {
		return ""
	}

	return c.String()
}

// Load implements the checkpoint.Loader interface.
func (s CheckpointStore) Load(ctx context.Context, id string) (checkpoint.Checkpoint, error) {
	value, err := s.Client.Get(ctx, s.key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return checkpoint.None, nil
	}

	if err != nil {
		return checkpoint.None, fmt.Errorf("subscriberredis.CheckpointStore.Load: failed to get key, %w", err)
	}

	position, err := version.ParseSequenceNumber(value)
	if err != nil {
		return checkpoint.None, fmt.Errorf("subscriberredis.CheckpointStore.Load: invalid checkpoint value, %w", err)
	}

	return checkpoint.At(position), nil
}

// CompareAndSet implements the checkpoint.CompareAndSetter interface.
func (s CheckpointStore) CompareAndSet(
	ctx context.Context,
	id string,
	expected, next checkpoint.Checkpoint,
) (bool, error) {
	if err := checkpoint.ValidateAdvance(expected, next); err != nil {
		return false, fmt.Errorf("subscriberredis.CheckpointStore.CompareAndSet: %w", err)
	}

	swapped, err := compareAndSet.Run(ctx, s.Client, []string{s.key(id)}, encode(expected), encode(next)).Int()
	if err != nil {
		return false, fmt.Errorf("subscriberredis.CheckpointStore.CompareAndSet: failed to run script, %w", err)
	}

	return swapped == 1, nil
}
