package changefeed

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeed_SinceReturnsInOrder(t *testing.T) {
	f := New(100)

	f.Publish(Change{SeqNo: 1, Offset: 0, Key: []byte("a")})
	f.Publish(Change{SeqNo: 2, Offset: 5, Key: []byte("b")})
	f.Publish(Change{SeqNo: 3, Offset: 9, Key: []byte("c")})

	events := f.Since(1)
	require.Len(t, events, 2)
	assert.Equal(t, "b", string(events[0].Key))
	assert.Equal(t, "c", string(events[1].Key))
}

func TestFeed_RingBufferWraps(t *testing.T) {
	f := New(3)

	for i := uint64(1); i <= 5; i++ {
		f.Publish(Change{SeqNo: i})
	}

	events := f.Since(0)
	require.Len(t, events, 3)
	assert.Equal(t, uint64(3), events[0].SeqNo)
	assert.Equal(t, uint64(5), events[2].SeqNo)
}

func TestFeed_Subscribe(t *testing.T) {
	f := New(100)

	id, ch := f.Subscribe(10)
	defer f.Unsubscribe(id)

	f.Publish(Change{SeqNo: 1, Key: []byte("k")})

	select {
	case c := <-ch:
		assert.Equal(t, "k", string(c.Key))
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for change")
	}
}

func TestFeed_UnsubscribeClosesChannel(t *testing.T) {
	f := New(100)

	id, ch := f.Subscribe(10)
	f.Unsubscribe(id)

	_, ok := <-ch
	assert.False(t, ok)
}

func TestFeed_Stats(t *testing.T) {
	f := New(50)
	f.Publish(Change{SeqNo: 1})
	f.Publish(Change{SeqNo: 2})
	id, _ := f.Subscribe(10)
	defer f.Unsubscribe(id)

	stats := f.Stats()
	assert.Equal(t, uint64(2), stats.TotalPublished)
	assert.Equal(t, 2, stats.BufferSize)
	assert.Equal(t, 50, stats.BufferCap)
	assert.Equal(t, 1, stats.Subscribers)
}

func TestFeed_ConcurrentPublishAndSubscribe(t *testing.T) {
	f := New(1000)
	var wg sync.WaitGroup

	id, ch := f.Subscribe(500)
	defer f.Unsubscribe(id)

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := uint64(1); i <= 100; i++ {
			f.Publish(Change{SeqNo: i})
		}
	}()

	consumed := 0
	wg.Add(1)
	go func() {
		defer wg.Done()
		timeout := time.After(2 * time.Second)
		for consumed < 100 {
			select {
			case <-ch:
				consumed++
			case <-timeout:
				return
			}
		}
	}()

	wg.Wait()
	assert.Equal(t, 100, consumed)
}
