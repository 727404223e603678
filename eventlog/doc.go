// Package eventlog defines the Log Client boundary consumed by Subscriptions:
// an ordered, append-only sequence of Entries that can be opened from any
// position and tailed live.
//
// An in-memory implementation is provided, useful for tests and for
// embedding the log in the same process as its consumers.
package eventlog
