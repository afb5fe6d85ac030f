package pile

import (
	"sort"
	"sync"
	"time"
)

// HotKeyEntry reports how many times a single Get/GetBySeqno lookup
// target was read.
type HotKeyEntry struct {
	Key   string
	Count int64
}

// hotKeyTracker counts read-path lookups so Database.HotKeys can report
// the busiest keys for capacity planning. It is fed exclusively by
// Get/GetBySeqno: nothing in the append or lookup path ever consults it,
// so it cannot act as a secondary index, and losing its counters (a
// process restart, or a reset) changes no on-disk state.
type hotKeyTracker struct {
	mu       sync.Mutex
	counts   map[string]int64
	capacity int
	halfLife time.Duration
}

// newHotKeyTracker creates a tracker whose top returns capacity entries
// when asked for a non-positive n. capacity does not limit how many
// distinct keys are counted: every observed key keeps a counter. halfLife, if
// positive, halves every counter on that interval so HotKeys reflects
// recent traffic rather than all-time totals; zero disables decay.
func newHotKeyTracker(capacity int, halfLife time.Duration) *hotKeyTracker {
	if capacity <= 0 {
		capacity = 100
	}
	t := &hotKeyTracker{
		counts:   make(map[string]int64, capacity),
		capacity: capacity,
		halfLife: halfLife,
	}
	if halfLife > 0 {
		go t.decayForever()
	}
	return t
}

// observe records one lookup against key.
func (t *hotKeyTracker) observe(key string) {
	t.mu.Lock()
	t.counts[key]++
	t.mu.Unlock()
}

// top returns the n keys with the highest observed count, descending. A
// non-positive n falls back to the tracker's configured capacity.
func (t *hotKeyTracker) top(n int) []HotKeyEntry {
	if n <= 0 {
		n = t.capacity
	}

	t.mu.Lock()
	entries := make([]HotKeyEntry, 0, len(t.counts))
	for key, count := range t.counts {
		entries = append(entries, HotKeyEntry{Key: key, Count: count})
	}
	t.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Key < entries[j].Key
	})
	if n < len(entries) {
		entries = entries[:n]
	}
	return entries
}

// reset discards every counter.
func (t *hotKeyTracker) reset() {
	t.mu.Lock()
	t.counts = make(map[string]int64, t.capacity)
	t.mu.Unlock()
}

// size returns the number of distinct keys currently tracked.
func (t *hotKeyTracker) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.counts)
}

// decayForever halves every counter once per halfLife, dropping any that
// reach zero, so a burst of historical reads does not permanently crowd
// out keys that are hot right now.
func (t *hotKeyTracker) decayForever() {
	ticker := time.NewTicker(t.halfLife)
	defer ticker.Stop()

	for range ticker.C {
		t.mu.Lock()
		for key, count := range t.counts {
			count /= 2
			if count == 0 {
				delete(t.counts, key)
			} else {
				t.counts[key] = count
			}
		}
		t.mu.Unlock()
	}
}
