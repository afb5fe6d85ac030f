// Package flatfile implements the append-only, memory-mapped byte log that
// backs a pile Database. Records are written through the OS file handle
// and observed by readers through a read-only mmap, so writes become
// visible to concurrent readers without any explicit cache-coherence step
// on a single host.
//
// The on-disk layout is the raw concatenation of serialized records with
// no header, no trailer, and no per-record framing beyond what the
// Serializer defines.
package flatfile

import (
	"errors"
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"

	"github.com/gostkin/data-pile/internal/rec"
)

// ErrOutOfSpace is returned by Append when the batch would grow the log
// past the configured mmap window.
var ErrOutOfSpace = errors.New("flatfile: append would exceed mmap size")

// FlatFile is an append-only, memory-mapped byte log.
type FlatFile struct {
	path     string
	mapSize  int64
	file     *os.File
	mapping  mmap.MMap
	appender *Appender
}

// Open opens or creates the flat file at path, extending it to at least
// mapSize bytes and establishing a read-only mmap over the whole window.
// The logical length is recovered by scanning records from offset 0 with
// scanLength, which must decode records with serializer until it hits a
// trailing zero-fill or partial record.
func Open(path string, mapSize int64, serializer rec.Serializer) (*FlatFile, error) {
	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		return nil, fmt.Errorf("flatfile: %s is a directory", path)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("flatfile: open %s: %w", path, err)
	}

	st, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("flatfile: stat %s: %w", path, err)
	}
	if st.Size() < mapSize {
		if err := file.Truncate(mapSize); err != nil {
			file.Close()
			return nil, fmt.Errorf("flatfile: extend %s to %d bytes: %w", path, mapSize, err)
		}
	}

	mapping, err := mmap.MapRegion(file, int(mapSize), mmap.RDONLY, 0, 0)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("flatfile: mmap %s: %w", path, err)
	}

	length, err := scanLength(mapping, serializer)
	if err != nil {
		mapping.Unmap()
		file.Close()
		return nil, fmt.Errorf("flatfile: recover length of %s: %w", path, err)
	}

	appender, err := newAppender(file, length)
	if err != nil {
		mapping.Unmap()
		file.Close()
		return nil, err
	}

	return &FlatFile{
		path:     path,
		mapSize:  mapSize,
		file:     file,
		mapping:  mapping,
		appender: appender,
	}, nil
}

// Len returns the logical length L of the log: the number of bytes that
// have been appended and are visible to readers. Appends are not fsynced.
func (f *FlatFile) Len() uint64 {
	return f.appender.Len()
}

// Append serializes records into a single contiguous buffer and appends it
// to the log in one write, atomically advancing the logical length. It
// returns the flatfile offset each record was written at, in order.
func (f *FlatFile) Append(serializer rec.Serializer, records []rec.Record) ([]uint64, error) {
	if len(records) == 0 {
		return nil, nil
	}

	total := 0
	sizes := make([]int, len(records))
	for i, r := range records {
		sizes[i] = serializer.Size(r)
		total += sizes[i]
	}

	initial := f.appender.Len()
	if initial+uint64(total) > uint64(f.mapSize) {
		return nil, ErrOutOfSpace
	}

	buf := make([]byte, total)
	offsets := make([]uint64, len(records))
	pos := 0
	for i, r := range records {
		offsets[i] = initial + uint64(pos)
		serializer.Write(r, buf[pos:pos+sizes[i]])
		pos += sizes[i]
	}

	if err := f.appender.Append(buf); err != nil {
		return nil, err
	}
	return offsets, nil
}

// GetRecordAtOffset decodes and returns the record beginning at off, or
// (Record{}, false, nil) if off is at or past the logical end of the log.
func (f *FlatFile) GetRecordAtOffset(serializer rec.Serializer, off uint64) (rec.Record, bool, error) {
	length := f.appender.Len()
	if off >= length {
		return rec.Record{}, false, nil
	}
	r, _, err := serializer.Read(f.mapping[off:length])
	if err != nil {
		return rec.Record{}, false, nil
	}
	return r, true, nil
}

// IterFrom returns an Iterator over the records starting at byte offset
// start, in log order, bounded by the logical length observed at call
// time; appends made after IterFrom is called are not reflected in it.
func (f *FlatFile) IterFrom(serializer rec.Serializer, start uint64) *Iterator {
	return &Iterator{
		ff:         f,
		serializer: serializer,
		offset:     start,
		end:        f.appender.Len(),
	}
}

// Close unmaps and closes the underlying file.
func (f *FlatFile) Close() error {
	if err := f.mapping.Unmap(); err != nil {
		return fmt.Errorf("flatfile: unmap %s: %w", f.path, err)
	}
	if err := f.file.Close(); err != nil {
		return fmt.Errorf("flatfile: close %s: %w", f.path, err)
	}
	return nil
}

// scanLength decodes records from the beginning of mapping until the
// serializer fails to decode at the current offset, treating the first
// undecodable position as the end of the log (trailing zero-fill from the
// mmap pre-extension, or a partial/corrupt tail record).
//
// A serializer is free to decode a run of zero bytes as a record with an
// empty key and an empty value — pile.Database.Append rejects empty keys
// for exactly this reason, so such a decode can never be a genuine record.
// Treating it as the end of the log instead of counting it keeps the scan
// from walking the rest of the pre-extended, zero-filled window as
// phantom empty records.
func scanLength(mapping []byte, serializer rec.Serializer) (uint64, error) {
	var off uint64
	for off < uint64(len(mapping)) {
		r, consumed, err := serializer.Read(mapping[off:])
		if err != nil || consumed <= 0 {
			break
		}
		if len(r.Key) == 0 && len(r.Value) == 0 {
			break
		}
		off += uint64(consumed)
	}
	return off, nil
}
