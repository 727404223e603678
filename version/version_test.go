package version_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/get-eventually/go-subscriber/version"
)

func TestSequenceNumber(t *testing.T) {
	t.Run("it round-trips through its decimal representation", func(t *testing.T) {
		seq := version.SequenceNumber(18446744073709551615)

		parsed, err := version.ParseSequenceNumber(seq.String())
		require.NoError(t, err)
		assert.Equal(t, seq, parsed)
	})

	t.Run("it rejects malformed values", func(t *testing.T) {
		for _, value := range []string{"", "-1", "abc", "1.5"} {
			_, err := version.ParseSequenceNumber(value)
			assert.Error(t, err, value)
		}
	})

	assert.EqualValues(t, 2, version.SequenceNumber(1).Next())
}
