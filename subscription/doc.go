// Package subscription contains a durable, resumable Subscription to an
// Event Log.
//
// A Controller reads entries in log order starting after the persisted
// checkpoint of the Subscription, groups them in Batches, and hands each Batch
// to a Processor, which applies the entries to the application Handler and
// advances the checkpoint with a compare-and-set operation.
//
// Entries are delivered at least once: Handlers should be idempotent, since
// a process restart may re-deliver the entries of a Batch that was being
// processed when the process stopped.
//
// Only one Controller should be running for a given Subscription identifier:
// when a Controller notices that the persisted checkpoint moved without it,
// it stops with a MismatchError rather than racing the other writer.
package subscription
