package pile

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHotKeyTracker_TopOrdersByCountDescending(t *testing.T) {
	tr := newHotKeyTracker(10, 0)
	for i := 0; i < 100; i++ {
		tr.observe("hot")
	}
	for i := 0; i < 50; i++ {
		tr.observe("warm")
	}
	tr.observe("cold")

	top := tr.top(3)
	require.Len(t, top, 3)
	assert.Equal(t, HotKeyEntry{Key: "hot", Count: 100}, top[0])
	assert.Equal(t, HotKeyEntry{Key: "warm", Count: 50}, top[1])
	assert.Equal(t, HotKeyEntry{Key: "cold", Count: 1}, top[2])
}

func TestHotKeyTracker_TopRespectsLimit(t *testing.T) {
	tr := newHotKeyTracker(2, 0)
	tr.observe("a")
	tr.observe("b")
	tr.observe("c")

	assert.Len(t, tr.top(2), 2)
}

func TestHotKeyTracker_Reset(t *testing.T) {
	tr := newHotKeyTracker(10, 0)
	tr.observe("x")
	tr.reset()
	assert.Equal(t, 0, tr.size())
}

func TestHotKeyTracker_DecayHalvesCounters(t *testing.T) {
	tr := newHotKeyTracker(10, 30*time.Millisecond)
	for i := 0; i < 100; i++ {
		tr.observe("key")
	}
	time.Sleep(80 * time.Millisecond)

	top := tr.top(1)
	if len(top) == 0 {
		return // fully decayed away is an acceptable outcome
	}
	assert.Less(t, top[0].Count, int64(100))
}

func TestHotKeyTracker_ConcurrentObserve(t *testing.T) {
	tr := newHotKeyTracker(10, 0)
	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tr.observe("concurrent")
			}
		}()
	}
	wg.Wait()

	top := tr.top(1)
	require.Len(t, top, 1)
	assert.Equal(t, int64(1000), top[0].Count)
}
