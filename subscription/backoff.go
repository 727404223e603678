package subscription

import (
	"math/rand"
	"time"

	"github.com/cenkalti/backoff/v4"
)

var _ backoff.BackOff = JitteredBackOff{}

// JitteredBackOff is a backoff.BackOff policy that waits for a constant
// Base delay, plus a random delay in [0, Jitter).
//
// The policy never gives up.
type JitteredBackOff struct {
	Base   time.Duration
	Jitter time.Duration
}

// NextBackOff implements the backoff.BackOff interface.
func (b JitteredBackOff) NextBackOff() time.Duration {
	if b.Jitter <= 0 {
		return b.Base
	}

	return b.Base + time.Duration(rand.Int63n(int64(b.Jitter))) //nolint:gosec // No need for a secure random source.
}

// Reset implements the backoff.BackOff interface.
func (JitteredBackOff) Reset() {}
