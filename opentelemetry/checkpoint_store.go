package opentelemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/get-eventually/go-subscriber/checkpoint"
)

var _ checkpoint.Store = &InstrumentedCheckpointStore{}

type storeInstruments struct {
	tracer       trace.Tracer
	loadDuration metric.Int64Histogram
	casDuration  metric.Int64Histogram
	casCount     metric.Int64Counter
}

func newStoreInstruments(cfg config) (*storeInstruments, error) {
	meter := cfg.meter()
	si := &storeInstruments{tracer: cfg.tracer()}

	wrapErr := func(err error) error {
		return fmt.Errorf("opentelemetry.InstrumentedCheckpointStore: failed to register metric, %w", err)
	}

	var err error

	if si.loadDuration, err = meter.Int64Histogram(
		"subscriber.checkpoint.load.duration.milliseconds",
		metric.WithUnit("ms"),
		metric.WithDescription("Duration in milliseconds of checkpoint.Store.Load operations performed."),
	); err != nil {
		return nil, wrapErr(err)
	}

	if si.casDuration, err = meter.Int64Histogram(
		"subscriber.checkpoint.compare_and_set.duration.milliseconds",
		metric.WithUnit("ms"),
		metric.WithDescription("Duration in milliseconds of checkpoint.Store.CompareAndSet operations performed."),
	); err != nil {
		return nil, wrapErr(err)
	}

	if si.casCount, err = meter.Int64Counter(
		"subscriber.checkpoint.compare_and_set.count",
		metric.WithDescription("Count of checkpoint.Store.CompareAndSet operations, by outcome."),
	); err != nil {
		return nil, wrapErr(err)
	}

	return si, nil
}

// InstrumentedCheckpointStore is a wrapper type over a checkpoint.Store
// instance to provide instrumentation, in the form of metrics and traces
// using OpenTelemetry.
//
// Use NewInstrumentedCheckpointStore for constructing a new instance of this type.
type InstrumentedCheckpointStore struct {
	store       checkpoint.Store
	instruments *storeInstruments
}

// NewInstrumentedCheckpointStore returns a wrapper type to provide OpenTelemetry
// instrumentation (metrics and traces) around a checkpoint.Store.
//
// An error is returned if metrics could not be registered.
func NewInstrumentedCheckpointStore(store checkpoint.Store, opts ...Option) (*InstrumentedCheckpointStore, error) {
	instruments, err := newStoreInstruments(newConfig(opts...))
	if err != nil {
		return nil, err
	}

	return &InstrumentedCheckpointStore{store: store, instruments: instruments}, nil
}

// Load calls the wrapped checkpoint.Store.Load method and records metrics and traces around it.
func (s *InstrumentedCheckpointStore) Load(ctx context.Context, id string) (result checkpoint.Checkpoint, err error) {
	attributes := []attribute.KeyValue{
		SubscriptionIDAttribute.String(id),
	}

	ctx, span := s.instruments.tracer.Start(ctx, "checkpoint.Store.Load", trace.WithAttributes(attributes...))
	start := time.Now()

	defer func() {
		attributes := append(attributes, ErrorAttribute.Bool(err != nil))
		s.instruments.loadDuration.Record(ctx, time.Since(start).Milliseconds(), metric.WithAttributes(attributes...))

		if err != nil {
			span.RecordError(err)
		}

		span.End()
	}()

	result, err = s.store.Load(ctx, id)

	return
}

// CompareAndSet calls the wrapped checkpoint.Store.CompareAndSet method
// and records metrics and traces around it.
func (s *InstrumentedCheckpointStore) CompareAndSet(
	ctx context.Context,
	id string,
	expected, next checkpoint.Checkpoint,
) (swapped bool, err error) {
	attributes := []attribute.KeyValue{
		SubscriptionIDAttribute.String(id),
	}

	//nolint:gocritic // Not appending to the same slice done on purpose.
	spanAttributes := append(attributes,
		CheckpointExpectedAttribute.String(expected.String()),
		CheckpointNextAttribute.String(next.String()),
	)

	ctx, span := s.instruments.tracer.Start(ctx, "checkpoint.Store.CompareAndSet", trace.WithAttributes(spanAttributes...))
	start := time.Now()

	defer func() {
		attributes := append(attributes, ErrorAttribute.Bool(err != nil))
		s.instruments.casDuration.Record(ctx, time.Since(start).Milliseconds(), metric.WithAttributes(attributes...))
		s.instruments.casCount.Add(ctx, 1, metric.WithAttributes(append(attributes, CheckpointSwappedAttribute.Bool(swapped))...))

		span.SetAttributes(CheckpointSwappedAttribute.Bool(swapped))

		if err != nil {
			span.RecordError(err)
		}

		span.End()
	}()

	swapped, err = s.store.CompareAndSet(ctx, id, expected, next)

	return
}
