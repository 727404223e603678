package eventlog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/get-eventually/go-subscriber/checkpoint"
	"github.com/get-eventually/go-subscriber/version"
)

var _ Client = new(InMemoryLog)

// ErrEmptyAppend is returned when appending no entries to the log.
var ErrEmptyAppend = errors.New("eventlog: no entries to append")

// InMemoryLog is a thread-safe, in-memory Event Log.
//
// Subscriptions opened on the log first catch up with the committed entries,
// then tail the log for new ones, until the context is canceled.
type InMemoryLog struct {
	mx      sync.RWMutex
	entries []Entry
	appends chan struct{}

	// Clock is used to timestamp appended entries. Defaults to time.Now.
	Clock func() time.Time
}

// NewInMemoryLog creates a new, empty eventlog.InMemoryLog instance.
func NewInMemoryLog() *InMemoryLog {
	return &InMemoryLog{
		appends: make(chan struct{}),
		Clock:   time.Now,
	}
}

func contextErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("eventlog.InMemoryLog: context error, %w", err)
	}

	return nil
}

// Append commits the provided entries at the end of the log, in order,
// and returns the position of the last one.
//
// Position and RecordedAt are always assigned by the log; ID is generated
// when empty.
func (l *InMemoryLog) Append(_ context.Context, entries ...Entry) (version.SequenceNumber, error) {
	if len(entries) == 0 {
		return 0, ErrEmptyAppend
	}

	l.mx.Lock()
	defer l.mx.Unlock()

	now := l.Clock()

	for _, entry := range entries {
		entry.Position = version.SequenceNumber(len(l.entries) + 1)
		entry.RecordedAt = now
		entry.Metadata = entry.Metadata.Clone()

		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}

		l.entries = append(l.entries, entry)
	}

	// Wake up all the tailing subscribers.
	close(l.appends)
	l.appends = make(chan struct{})

	return version.SequenceNumber(len(l.entries)), nil
}

// Len returns the number of entries committed to the log.
func (l *InMemoryLog) Len() int {
	l.mx.RLock()
	defer l.mx.RUnlock()

	return len(l.entries)
}

func (l *InMemoryLog) pending(next version.SequenceNumber) ([]Entry, <-chan struct{}) {
	l.mx.RLock()
	defer l.mx.RUnlock()

	if int(next) > len(l.entries) {
		return nil, l.appends
	}

	return l.entries[next-1:], l.appends
}

func (l *InMemoryLog) at(position version.SequenceNumber) (Entry, bool) {
	l.mx.RLock()
	defer l.mx.RUnlock()

	if position == 0 || int(position) > len(l.entries) {
		return Entry{}, false
	}

	return l.entries[position-1], true
}

// prepare applies link resolution and filtering to an entry about to be delivered.
func (l *InMemoryLog) prepare(entry Entry, filter Filter) (Entry, bool) {
	if filter.ResolveLinks && entry.IsLink() {
		// Unresolvable links are delivered as they are, consumers decide what to do with them.
		if target, err := entry.LinkTarget(); err == nil {
			if targetEntry, ok := l.at(target); ok && !targetEntry.IsLink() {
				entry = entry.Resolve(targetEntry)
			}
		}
	}

	return entry, filter.Allows(entry.Type)
}

// Subscribe implements the eventlog.Client interface.
//
// context.Canceled error is always returned, wrapped, once the context is done.
func (l *InMemoryLog) Subscribe(
	ctx context.Context,
	stream StreamWrite,
	from checkpoint.Checkpoint,
	filter Filter,
) error {
	defer close(stream)

	next := from.Next()

	for {
		entries, appended := l.pending(next)

		for _, entry := range entries {
			next = entry.Position.Next()

			delivered, ok := l.prepare(entry, filter)
			if !ok {
				continue
			}

			select {
			case stream <- delivered:
			case <-ctx.Done():
				return contextErr(ctx)
			}
		}

		if len(entries) > 0 {
			continue
		}

		select {
		case <-appended:
		case <-ctx.Done():
			return contextErr(ctx)
		}
	}
}
