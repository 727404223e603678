package opentelemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/get-eventually/go-subscriber/subscription"
)

var _ subscription.Handler = &InstrumentedHandler{}

type handlerInstruments struct {
	tracer   trace.Tracer
	count    metric.Int64Counter
	duration metric.Int64Histogram
}

func newHandlerInstruments(cfg config) (*handlerInstruments, error) {
	meter := cfg.meter()
	hi := &handlerInstruments{tracer: cfg.tracer()}

	var err error

	if hi.count, err = meter.Int64Counter(
		"subscriber.handler.count",
		metric.WithDescription("Count of entries handled by subscription.Handler."),
	); err != nil {
		return nil, fmt.Errorf("opentelemetry.InstrumentedHandler: failed to register metric, %w", err)
	}

	if hi.duration, err = meter.Int64Histogram(
		"subscriber.handler.duration.milliseconds",
		metric.WithUnit("ms"),
		metric.WithDescription("Duration in milliseconds of subscription.Handler.Handle operations performed."),
	); err != nil {
		return nil, fmt.Errorf("opentelemetry.InstrumentedHandler: failed to register metric, %w", err)
	}

	return hi, nil
}

// InstrumentedHandler wraps a subscription.Handler to provide telemetry
// support using OpenTelemetry.
//
// Use NewInstrumentedHandler to create a new instance.
type InstrumentedHandler struct {
	subscriptionID string
	handler        subscription.Handler
	instruments    *handlerInstruments
}

// NewInstrumentedHandler wraps a subscription.Handler to export traces
// and metrics on the entries it handles.
//
// An error is returned if metrics could not be registered.
func NewInstrumentedHandler(
	subscriptionID string,
	handler subscription.Handler,
	opts ...Option,
) (*InstrumentedHandler, error) {
	instruments, err := newHandlerInstruments(newConfig(opts...))
	if err != nil {
		return nil, err
	}

	return &InstrumentedHandler{
		subscriptionID: subscriptionID,
		handler:        handler,
		instruments:    instruments,
	}, nil
}

// Handle calls the wrapped subscription.Handler and records metrics and traces around it.
func (ih *InstrumentedHandler) Handle(ctx context.Context, event subscription.Event) (err error) {
	attributes := []attribute.KeyValue{
		SubscriptionIDAttribute.String(ih.subscriptionID),
		EntryTypeAttribute.String(event.Type),
	}

	spanAttributes := append(attributes, //nolint:gocritic // Intended behavior.
		EntryPositionAttribute.Int64(int64(event.Position)),
		EntryStreamAttribute.String(event.StreamID),
		EntryLinkedAttribute.Bool(event.Link != nil),
	)

	ctx, span := ih.instruments.tracer.Start(ctx, "subscription.Handler.Handle", trace.WithAttributes(spanAttributes...))
	defer span.End()

	start := time.Now()

	defer func() {
		ih.instruments.duration.Record(ctx, time.Since(start).Milliseconds(), metric.WithAttributes(attributes...))
		ih.instruments.count.Add(ctx, 1, metric.WithAttributes(append(attributes, ErrorAttribute.Bool(err != nil))...))
	}()

	if err = ih.handler.Handle(ctx, event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "handler failed")
	}

	return err
}
