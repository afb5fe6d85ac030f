package flatfile

import "github.com/gostkin/data-pile/internal/rec"

// Iterator walks records forward from a starting offset, bounded by the
// logical length observed when the iterator was created. Appends made
// after creation are never observed by an existing Iterator, which keeps
// termination deterministic for a caller that is also writing.
type Iterator struct {
	ff         *FlatFile
	serializer rec.Serializer
	offset     uint64
	end        uint64
	done       bool
}

// Next decodes and returns the next record, advancing the iterator. The
// second return value is false once the iterator is exhausted or hits an
// undecodable tail.
func (it *Iterator) Next() (rec.Record, bool) {
	if it.done || it.offset >= it.end {
		it.done = true
		return rec.Record{}, false
	}

	r, consumed, err := it.serializer.Read(it.ff.mapping[it.offset:it.end])
	if err != nil || consumed <= 0 {
		it.done = true
		return rec.Record{}, false
	}

	it.offset += uint64(consumed)
	return r, true
}

// Offset returns the flatfile offset the next call to Next will read from.
func (it *Iterator) Offset() uint64 {
	return it.offset
}
