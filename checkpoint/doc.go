// Package checkpoint exposes the Store interface, used to checkpoint,
// or save, the current progress of a Subscription, so that it might survive
// application restarts without reprocessing Events.
//
// Checkpoints only ever move forward, and every write goes through
// Store.CompareAndSet: a Subscription never overwrites a checkpoint it has not
// observed first.
package checkpoint
