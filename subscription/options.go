package subscription

import (
	"errors"
	"fmt"
	"time"

	"github.com/get-eventually/go-subscriber/eventlog"
)

// Default values used by a Subscription, if not specified.
const (
	DefaultBatchSize       = 1
	DefaultBufferSize      = 32
	DefaultReconnectDelay  = 1 * time.Second
	DefaultReconnectJitter = 1 * time.Second
)

// Options is the configuration of a Subscription, which stays the same
// for the whole lifetime of a Controller.
type Options struct {
	// ID is the identifier of the Subscription, used to address its checkpoint.
	ID string

	// BatchSize is the maximum number of entries processed and checkpointed together.
	BatchSize int

	// Filter is used when opening the Event Log.
	Filter eventlog.Filter

	// TolerateDecodeErrors makes the Processor skip entries that cannot be decoded,
	// instead of stopping the Subscription.
	TolerateDecodeErrors bool

	// ReconnectDelay is the base delay before reopening the Event Log
	// after the connection dropped.
	ReconnectDelay time.Duration

	// ReconnectJitter is the upper bound of the random delay added
	// to ReconnectDelay.
	ReconnectJitter time.Duration

	// BufferSize is the size of the buffered channel used to receive
	// entries from the Event Log.
	BufferSize int
}

// Option can be used to change the Options of a Subscription.
type Option func(*Options)

// NewOptions returns the Options for the Subscription with the specified identifier,
// using the default values for anything not specified through the Option values.
func NewOptions(id string, opts ...Option) (Options, error) {
	options := Options{
		ID:                   id,
		BatchSize:            DefaultBatchSize,
		TolerateDecodeErrors: true,
		ReconnectDelay:       DefaultReconnectDelay,
		ReconnectJitter:      DefaultReconnectJitter,
		BufferSize:           DefaultBufferSize,
	}

	for _, opt := range opts {
		opt(&options)
	}

	if err := options.Validate(); err != nil {
		return Options{}, err
	}

	return options, nil
}

// Validate returns an error if the Options cannot be used to run a Subscription.
func (o Options) Validate() error {
	var errs []error

	if o.ID == "" {
		errs = append(errs, errors.New("subscription id is required"))
	}

	if o.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("batch size must be positive, got %d", o.BatchSize))
	}

	if o.BufferSize < 0 {
		errs = append(errs, fmt.Errorf("buffer size must not be negative, got %d", o.BufferSize))
	}

	if o.ReconnectDelay < 0 || o.ReconnectJitter < 0 {
		errs = append(errs, errors.New("reconnect delays must not be negative"))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("subscription.Options: invalid options, %w", err)
	}

	return nil
}

// WithBatchSize sets the maximum number of entries in a Batch.
func WithBatchSize(size int) Option {
	return func(o *Options) { o.BatchSize = size }
}

// WithEventTypes restricts the Subscription to entries of the specified types.
func WithEventTypes(types ...string) Option {
	return func(o *Options) { o.Filter.Include = append(o.Filter.Include, types...) }
}

// WithoutEventTypes excludes entries of the specified types from the Subscription.
func WithoutEventTypes(types ...string) Option {
	return func(o *Options) { o.Filter.Exclude = append(o.Filter.Exclude, types...) }
}

// WithResolveLinks asks the Event Log to resolve link records
// into the entries they point to.
func WithResolveLinks(resolve bool) Option {
	return func(o *Options) { o.Filter.ResolveLinks = resolve }
}

// WithDecodeErrorTolerance sets whether undecodable entries should be skipped.
func WithDecodeErrorTolerance(tolerate bool) Option {
	return func(o *Options) { o.TolerateDecodeErrors = tolerate }
}

// WithReconnectDelay sets the base delay and the maximum jitter used
// before reopening a dropped Event Log connection.
func WithReconnectDelay(base, jitter time.Duration) Option {
	return func(o *Options) {
		o.ReconnectDelay = base
		o.ReconnectJitter = jitter
	}
}

// WithBufferSize sets the size of the buffer between the Event Log and the Batcher.
func WithBufferSize(size int) Option {
	return func(o *Options) { o.BufferSize = size }
}
