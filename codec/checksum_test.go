package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gostkin/data-pile/internal/rec"
)

func TestChecksummed_RoundTrip(t *testing.T) {
	r := rec.New([]byte("hello"), []byte("world"))
	c := Checksummed{Inner: LengthPrefixed{}}

	buf := make([]byte, c.Size(r))
	c.Write(r, buf)

	got, consumed, err := c.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), consumed)
	assert.Equal(t, []byte("hello"), got.Key)
	assert.Equal(t, []byte("world"), got.Value)
}

func TestChecksummed_DetectsCorruption(t *testing.T) {
	r := rec.New([]byte("hello"), []byte("world"))
	c := Checksummed{Inner: LengthPrefixed{}}

	buf := make([]byte, c.Size(r))
	c.Write(r, buf)
	buf[len(buf)-1] ^= 0xFF // flip every bit of the value's last byte

	_, _, err := c.Read(buf)
	assert.ErrorIs(t, err, ErrCorrupted)
}
