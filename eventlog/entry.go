package eventlog

import (
	"fmt"
	"time"

	"github.com/get-eventually/go-subscriber/message"
	"github.com/get-eventually/go-subscriber/version"
)

// LinkType is the Entry type of link records: entries pointing to another
// entry of the log, whose position is carried as decimal text in Data.
const LinkType = "$>"

// Entry is an immutable record of the Event Log.
type Entry struct {
	// ID uniquely identifies the record, and can be used by handlers
	// to deduplicate re-deliveries.
	ID string

	// Position is the sequence number of the Entry in the log.
	Position version.SequenceNumber

	// Type is the kind of the Entry payload, used to decode Data.
	Type string

	// StreamID names the stream the entry was originally appended to.
	StreamID string

	Data       []byte
	Metadata   message.Metadata
	RecordedAt time.Time

	// Link is the original link record this Entry has been resolved from,
	// or nil if the Entry has not been obtained by resolving a link.
	Link *Entry
}

// NewLink returns a link Entry, pointing to the entry at the target position.
func NewLink(streamID string, target version.SequenceNumber) Entry {
	return Entry{
		Type:     LinkType,
		StreamID: streamID,
		Data:     []byte(target.String()),
	}
}

// IsLink returns true if the Entry is an unresolved link record.
func (e Entry) IsLink() bool { return e.Type == LinkType }

// LinkTarget returns the position the link record points to.
func (e Entry) LinkTarget() (version.SequenceNumber, error) {
	if !e.IsLink() {
		return 0, fmt.Errorf("eventlog.Entry: entry %d is not a link", e.Position)
	}

	target, err := version.ParseSequenceNumber(string(e.Data))
	if err != nil {
		return 0, fmt.Errorf("eventlog.Entry: malformed link target in entry %d, %w", e.Position, err)
	}

	return target, nil
}

// Resolve returns the target entry as seen through the link record e:
// the resulting Entry keeps the link position, so that checkpoints keep
// tracking the log being consumed, and references e in its Link field.
func (e Entry) Resolve(target Entry) Entry {
	link := e

	target.Position = e.Position
	target.Link = &link

	return target
}
