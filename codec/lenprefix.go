// Package codec provides ready-made pile.Serializer implementations.
// Callers are free to write their own: the core only requires the
// Size/Write/Read contract in pile.Serializer.
package codec

import (
	"encoding/binary"
	"errors"

	"github.com/gostkin/data-pile/internal/rec"
)

// ErrTruncated is returned by Read when src does not contain a full
// record, including when it is too short to hold even the varint length
// headers.
var ErrTruncated = errors.New("codec: truncated record")

// LengthPrefixed encodes a record as
// varint(len(key)) | key | varint(len(value)) | value, the minimal
// self-delimiting framing the spec's Serializer contract requires.
//
// A record with both an empty key and an empty value decodes from two
// zero bytes — the same bytes an mmap's pre-extension zero-fill produces
// — so the flatfile's open-time length scan relies on
// pile.Database.Append never writing one.
type LengthPrefixed struct{}

// Size returns the number of bytes Write will produce for r.
func (LengthPrefixed) Size(r rec.Record) int {
	return uvarintLen(uint64(len(r.Key))) + len(r.Key) + uvarintLen(uint64(len(r.Value))) + len(r.Value)
}

func uvarintLen(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// Write encodes r into dst, which must be exactly Size(r) bytes.
func (LengthPrefixed) Write(r rec.Record, dst []byte) {
	off := binary.PutUvarint(dst, uint64(len(r.Key)))
	off += copy(dst[off:], r.Key)
	off += binary.PutUvarint(dst[off:], uint64(len(r.Value)))
	copy(dst[off:], r.Value)
}

// Read decodes one record from the head of src.
func (LengthPrefixed) Read(src []byte) (rec.Record, int, error) {
	keyLen, n := binary.Uvarint(src)
	if n <= 0 {
		return rec.Record{}, 0, ErrTruncated
	}
	off := n
	if uint64(len(src)-off) < keyLen {
		return rec.Record{}, 0, ErrTruncated
	}
	key := src[off : off+int(keyLen)]
	off += int(keyLen)

	valLen, n := binary.Uvarint(src[off:])
	if n <= 0 {
		return rec.Record{}, 0, ErrTruncated
	}
	off += n
	if uint64(len(src)-off) < valLen {
		return rec.Record{}, 0, ErrTruncated
	}
	value := src[off : off+int(valLen)]
	off += int(valLen)

	ownedKey := append([]byte(nil), key...)
	ownedValue := append([]byte(nil), value...)
	return rec.New(ownedKey, ownedValue), off, nil
}
