// Package subscriber contains a durable, resumable subscriber for
// append-only Event Logs.
//
// A Subscription reads the log in order starting from its persisted
// checkpoint, groups entries into batches, hands them to the application
// and advances the checkpoint only once a batch has been processed,
// using compare-and-set to detect competing subscribers.
//
// Start from the `subscription` package to run a Subscription, and pick
// an Event Log from `eventlog` or `postgres`, and a `checkpoint.Store`
// implementation from `checkpoint`, `postgres`, `firestore`, `redis` or `pebble`.
package subscriber
