// Package keyindex implements the in-memory ordered key -> flatfile-offset
// map that a Database rebuilds by scanning the flatfile at open time. It
// is never persisted: the flatfile is the sole source of truth, and this
// index is derived state.
//
// The underlying structure is a B-tree (github.com/google/btree) rather
// than a hash map, because the spec calls for an ordering that does not
// degrade on adversarial key distributions and that is reserved for
// possible future range scans — both of which a B-tree gives for free
// where a map[string]uint64 would not.
package keyindex

import (
	"bytes"
	"sync"

	"github.com/google/btree"
)

const degree = 32

// entry is the btree.Item stored for each key: an owned copy of the key
// bytes (independent of the flatfile mmap) paired with the flatfile
// offset the record begins at.
type entry struct {
	key    []byte
	offset uint64
}

// Less implements btree.Item, ordering entries by key bytes.
func (e entry) Less(than btree.Item) bool {
	return bytes.Compare(e.key, than.(entry).key) < 0
}

// KeyIndex is an in-memory ordered mapping from record keys to flatfile
// offsets, guarded by a reader-writer lock.
type KeyIndex struct {
	mu   sync.RWMutex
	tree *btree.BTree
}

// New creates an empty KeyIndex. Callers reconstruct it by scanning the
// flatfile from offset 0 and calling Put for each decoded record — this
// is the recovery path described in the spec.
func New() *KeyIndex {
	return &KeyIndex{tree: btree.New(degree)}
}

// Put inserts or overwrites the offset recorded for key.
func (k *KeyIndex) Put(key []byte, offset uint64) {
	owned := append([]byte(nil), key...)
	k.mu.Lock()
	k.tree.ReplaceOrInsert(entry{key: owned, offset: offset})
	k.mu.Unlock()
}

// Get returns the flatfile offset for key, if present.
func (k *KeyIndex) Get(key []byte) (uint64, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	item := k.tree.Get(entry{key: key})
	if item == nil {
		return 0, false
	}
	return item.(entry).offset, true
}

// Contains reports whether key is present in the index.
func (k *KeyIndex) Contains(key []byte) bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.tree.Get(entry{key: key}) != nil
}

// Len returns the number of distinct keys currently indexed.
func (k *KeyIndex) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.tree.Len()
}

// Ascend calls fn for every (key, offset) pair in ascending key order,
// stopping early if fn returns false. It exists for the ordering the
// underlying B-tree gives for free; the spec reserves it for possible
// future range scans and does not require it of callers today.
func (k *KeyIndex) Ascend(fn func(key []byte, offset uint64) bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	k.tree.Ascend(func(i btree.Item) bool {
		e := i.(entry)
		return fn(e.key, e.offset)
	})
}
