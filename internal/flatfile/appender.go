package flatfile

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
)

// Appender is FlatFile's single-writer append path: it owns the write
// file handle, serializes concurrent appends behind a mutex, and
// publishes the logical length L through an atomic counter so readers
// never have to take a lock just to call Len().
type Appender struct {
	mu     sync.Mutex
	file   *os.File
	length atomic.Uint64
}

func newAppender(file *os.File, initialLength uint64) (*Appender, error) {
	a := &Appender{file: file}
	a.length.Store(initialLength)
	return a, nil
}

// Len returns the current logical length, lock-free.
func (a *Appender) Len() uint64 {
	return a.length.Load()
}

// Append writes buf at the current logical end of the file and advances
// the logical length on success. At most one Append is ever in flight.
func (a *Appender) Append(buf []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	offset := int64(a.length.Load())
	n, err := a.file.WriteAt(buf, offset)
	if err != nil {
		return fmt.Errorf("flatfile: write at offset %d: %w", offset, err)
	}
	if n != len(buf) {
		return fmt.Errorf("flatfile: short write at offset %d: wrote %d of %d bytes", offset, n, len(buf))
	}

	a.length.Add(uint64(n))
	return nil
}
