package checkpoint

import (
	"github.com/get-eventually/go-subscriber/version"
)

// None is the Checkpoint of a Subscription that has not processed
// any entry yet: consuming from it starts from the beginning of the log.
var None = Checkpoint{}

// Checkpoint marks the position of the last entry successfully processed
// by a Subscription.
//
// Checkpoints are totally ordered, None being the smallest of all values.
// The zero value is None.
type Checkpoint struct {
	sequenceNumber version.SequenceNumber
	valid          bool
}

// At returns the Checkpoint positioned on the specified sequence number.
func At(sequenceNumber version.SequenceNumber) Checkpoint {
	return Checkpoint{sequenceNumber: sequenceNumber, valid: true}
}

// IsNone returns true if the Checkpoint carries no progress.
func (c Checkpoint) IsNone() bool { return !c.valid }

// SequenceNumber returns the position of the Checkpoint, if any.
func (c Checkpoint) SequenceNumber() (version.SequenceNumber, bool) {
	return c.sequenceNumber, c.valid
}

// Covers returns true if the entry at the provided sequence number
// has already been processed according to this Checkpoint.
func (c Checkpoint) Covers(sequenceNumber version.SequenceNumber) bool {
	return c.valid && sequenceNumber <= c.sequenceNumber
}

// Compare returns -1 if c comes before other, +1 if it comes after,
// and 0 if the two Checkpoints are the same.
func (c Checkpoint) Compare(other Checkpoint) int {
	switch {
	case c == other:
		return 0
	case !c.valid:
		return -1
	case !other.valid:
		return 1
	case c.sequenceNumber < other.sequenceNumber:
		return -1
	default:
		return 1
	}
}

// Next returns the first sequence number not covered by the Checkpoint,
// which is where a log should be opened to resume consuming.
func (c Checkpoint) Next() version.SequenceNumber {
	if !c.valid {
		return 1
	}

	return c.sequenceNumber.Next()
}

func (c Checkpoint) String() string {
	if !c.valid {
		return "none"
	}

	return c.sequenceNumber.String()
}
