// Package seqnoindex implements the mmap'd, append-only array of 64-bit
// flatfile offsets that gives a Database O(1) lookup by insertion
// sequence number. Its on-disk layout and mmap lifecycle mirror
// internal/flatfile, specialized to fixed 8-byte little-endian entries;
// its append path additionally persists a length sidecar, which
// flatfile's zero-fill length recovery does not need.
package seqnoindex

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
)

const entrySize = 8

// ErrOutOfSpace is returned by Append when the batch would grow the index
// past the configured mmap window.
var ErrOutOfSpace = errors.New("seqnoindex: append would exceed mmap size")

// SeqNoIndex is an append-only mmap'd array of uint64 flatfile offsets,
// one per inserted record, indexed by sequence number.
type SeqNoIndex struct {
	path     string
	mapSize  int64
	file     *os.File
	mapping  mmap.MMap
	appender *appender
}

// Open opens or creates the seqno index at path, extending it to at least
// mapSize bytes. Because the file is pre-extended, its on-disk size
// cannot reveal how many entries were actually written, so the logical
// length is tracked in a small sidecar file (path + ".len") rather than by
// sniffing the mmap for non-zero bytes per §7's alternative recovery
// strategy: a zero-valued offset is itself a legitimate first entry, which
// makes scanning for "the zero fill" ambiguous.
func Open(path string, mapSize int64) (*SeqNoIndex, error) {
	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		return nil, fmt.Errorf("seqnoindex: %s is a directory", path)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("seqnoindex: open %s: %w", path, err)
	}

	st, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("seqnoindex: stat %s: %w", path, err)
	}
	if st.Size() < mapSize {
		if err := file.Truncate(mapSize); err != nil {
			file.Close()
			return nil, fmt.Errorf("seqnoindex: extend %s to %d bytes: %w", path, mapSize, err)
		}
	}

	mapping, err := mmap.MapRegion(file, int(mapSize), mmap.RDONLY, 0, 0)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("seqnoindex: mmap %s: %w", path, err)
	}

	length, err := readLengthSidecar(path + ".len")
	if err != nil {
		mapping.Unmap()
		file.Close()
		return nil, fmt.Errorf("seqnoindex: read length sidecar for %s: %w", path, err)
	}
	// Clamp against corruption or a hand-edited sidecar: never report more
	// entries than the mapped window could physically hold, and never a
	// partial entry.
	if length > uint64(mapSize) {
		length = uint64(mapSize)
	}
	length -= length % entrySize

	app, err := newAppender(file, path+".len", length)
	if err != nil {
		mapping.Unmap()
		file.Close()
		return nil, err
	}

	return &SeqNoIndex{
		path:     path,
		mapSize:  mapSize,
		file:     file,
		mapping:  mapping,
		appender: app,
	}, nil
}

// Len returns the number of entries currently in the index.
func (s *SeqNoIndex) Len() uint64 {
	return s.appender.Len() / entrySize
}

// Append encodes each offset as little-endian uint64 and appends them as
// one atomic batch, using the same mmap/mutex protocol as FlatFile.
func (s *SeqNoIndex) Append(offsets []uint64) error {
	if len(offsets) == 0 {
		return nil
	}

	buf := make([]byte, len(offsets)*entrySize)
	for i, off := range offsets {
		binary.LittleEndian.PutUint64(buf[i*entrySize:], off)
	}

	if s.appender.Len()+uint64(len(buf)) > uint64(s.mapSize) {
		return ErrOutOfSpace
	}

	return s.appender.Append(buf)
}

// GetPointerToValue returns the flatfile offset stored at entry i, or
// (0, false) if i is at or past the current length.
func (s *SeqNoIndex) GetPointerToValue(i uint64) (uint64, bool) {
	if i >= s.Len() {
		return 0, false
	}
	off := i * entrySize
	return binary.LittleEndian.Uint64(s.mapping[off : off+entrySize]), true
}

// Close unmaps and closes the underlying file.
func (s *SeqNoIndex) Close() error {
	if err := s.mapping.Unmap(); err != nil {
		return fmt.Errorf("seqnoindex: unmap %s: %w", s.path, err)
	}
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("seqnoindex: close %s: %w", s.path, err)
	}
	return nil
}

func readLengthSidecar(path string) (uint64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	if len(data) < entrySize {
		return 0, nil
	}
	return binary.LittleEndian.Uint64(data[:entrySize]), nil
}
