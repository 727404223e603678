package opentelemetry

import "go.opentelemetry.io/otel/attribute"

// Attribute keys used by the instrumentation in this package.
const (
	// ErrorAttribute is used with a metric when an error is recorded.
	ErrorAttribute attribute.Key = "error"

	SubscriptionIDAttribute attribute.Key = "subscription.id"

	EntryTypeAttribute     attribute.Key = "entry.type"
	EntryPositionAttribute attribute.Key = "entry.position"
	EntryStreamAttribute   attribute.Key = "entry.stream_id"
	EntryLinkedAttribute   attribute.Key = "entry.linked"

	CheckpointExpectedAttribute attribute.Key = "checkpoint.expected"
	CheckpointNextAttribute     attribute.Key = "checkpoint.next"

	// CheckpointSwappedAttribute reports whether a compare-and-set
	// operation advanced the checkpoint.
	CheckpointSwappedAttribute attribute.Key = "checkpoint.swapped"
)
