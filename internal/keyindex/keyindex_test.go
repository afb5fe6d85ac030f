package keyindex

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyIndex_PutGetContains(t *testing.T) {
	idx := New()

	_, ok := idx.Get([]byte("a"))
	assert.False(t, ok)
	assert.False(t, idx.Contains([]byte("a")))

	idx.Put([]byte("a"), 10)
	off, ok := idx.Get([]byte("a"))
	assert.True(t, ok)
	assert.Equal(t, uint64(10), off)
	assert.True(t, idx.Contains([]byte("a")))
}

func TestKeyIndex_PutOverwrites(t *testing.T) {
	idx := New()
	idx.Put([]byte("a"), 1)
	idx.Put([]byte("a"), 2)

	off, ok := idx.Get([]byte("a"))
	assert.True(t, ok)
	assert.Equal(t, uint64(2), off)
	assert.Equal(t, 1, idx.Len())
}

func TestKeyIndex_KeyBytesAreOwned(t *testing.T) {
	idx := New()
	key := []byte("mutable")
	idx.Put(key, 5)
	key[0] = 'M'

	off, ok := idx.Get([]byte("mutable"))
	assert.True(t, ok)
	assert.Equal(t, uint64(5), off)
}

func TestKeyIndex_AscendIsSorted(t *testing.T) {
	idx := New()
	idx.Put([]byte("c"), 3)
	idx.Put([]byte("a"), 1)
	idx.Put([]byte("b"), 2)

	var seen []string
	idx.Ascend(func(key []byte, offset uint64) bool {
		seen = append(seen, string(key))
		return true
	})
	assert.Equal(t, []string{"a", "b", "c"}, seen)
}

func TestKeyIndex_ConcurrentPutAndGet(t *testing.T) {
	idx := New()
	var wg sync.WaitGroup

	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			idx.Put([]byte(fmt.Sprintf("key-%d", i)), uint64(i))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 200, idx.Len())
	off, ok := idx.Get([]byte("key-100"))
	assert.True(t, ok)
	assert.Equal(t, uint64(100), off)
}
