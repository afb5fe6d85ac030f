package codec

import (
	"encoding/binary"
	"errors"
	"hash/crc32"

	"github.com/gostkin/data-pile/internal/rec"
)

// ErrCorrupted is returned by Checksummed.Read when the stored CRC32 does
// not match the decoded bytes.
var ErrCorrupted = errors.New("codec: corrupted record (CRC32 mismatch)")

// Checksummed wraps another Serializer, prepending a 4-byte little-endian
// CRC32 (IEEE polynomial) of the inner encoding and validating it on Read.
// This keeps per-record corruption detection a Serializer-level opt-in
// rather than a property the core (FlatFile/SeqNoIndex) has to know
// about, matching the spec's "the flatfile does not parse records"
// boundary.
type Checksummed struct {
	Inner rec.Serializer
}

// Size returns the number of bytes Write will produce for r.
func (c Checksummed) Size(r rec.Record) int {
	return 4 + c.Inner.Size(r)
}

// Write encodes r into dst, which must be exactly Size(r) bytes.
func (c Checksummed) Write(r rec.Record, dst []byte) {
	c.Inner.Write(r, dst[4:])
	checksum := crc32.ChecksumIEEE(dst[4:])
	binary.LittleEndian.PutUint32(dst[:4], checksum)
}

// Read decodes one record from the head of src, verifying its checksum.
func (c Checksummed) Read(src []byte) (rec.Record, int, error) {
	if len(src) < 4 {
		return rec.Record{}, 0, ErrTruncated
	}
	stored := binary.LittleEndian.Uint32(src[:4])

	r, consumed, err := c.Inner.Read(src[4:])
	if err != nil {
		return rec.Record{}, 0, err
	}

	actual := crc32.ChecksumIEEE(src[4 : 4+consumed])
	if actual != stored {
		return rec.Record{}, 0, ErrCorrupted
	}
	return r, 4 + consumed, nil
}
