package pile

import "github.com/gostkin/data-pile/internal/flatfile"

// Iterator walks records forward in insertion order, bounded by the
// flatfile length observed when it was created via IterFromSeqno. Appends
// made after creation are never observed by an existing Iterator.
type Iterator struct {
	inner *flatfile.Iterator
}

// Next decodes and returns the next record. The second return value is
// false once the iterator is exhausted.
func (it *Iterator) Next() (Record, bool) {
	return it.inner.Next()
}
