// Package version contains the types used to address positions
// in an append-only Event Log.
package version

import "strconv"

// SequenceNumber is the position of an entry in the Event Log;
// in other words, the global offset of the entry in the log.
//
// Sequence numbers start from 1: the zero value never addresses an entry.
type SequenceNumber uint64

// Next returns the sequence number immediately following this one.
func (s SequenceNumber) Next() SequenceNumber { return s + 1 }

func (s SequenceNumber) String() string {
	return strconv.FormatUint(uint64(s), 10)
}

// ParseSequenceNumber parses the decimal representation of a sequence number,
// as produced by SequenceNumber.String.
func ParseSequenceNumber(s string) (SequenceNumber, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err //nolint:wrapcheck // strconv errors already carry the input.
	}

	return SequenceNumber(v), nil
}
