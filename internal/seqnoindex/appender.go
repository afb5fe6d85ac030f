package seqnoindex

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
)

// appender is seqnoindex's single-writer append path: structurally the
// same mutex + atomic-length-counter design as flatfile.Appender, with an
// additional responsibility of persisting the logical length to a sidecar
// file after each successful append, since the seqno file itself is
// pre-extended and cannot reveal its own logical length on reopen.
type appender struct {
	mu      sync.Mutex
	file    *os.File
	lenPath string
	length  atomic.Uint64
}

func newAppender(file *os.File, lenPath string, initialLength uint64) (*appender, error) {
	a := &appender{file: file, lenPath: lenPath}
	a.length.Store(initialLength)
	return a, nil
}

// Len returns the current logical length in bytes, lock-free.
func (a *appender) Len() uint64 {
	return a.length.Load()
}

// Append writes buf at the current logical end of the file, persists the
// new length to the sidecar, and advances the in-memory counter. If the
// sidecar write fails after the data write succeeded, the logical length
// observed by this process is still advanced (the data is present and
// readable), but a future Open may not see the tail until the sidecar is
// corrected — recoverable exactly the way §7 describes for the seqno
// index diverging from the flatfile.
func (a *appender) Append(buf []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	offset := int64(a.length.Load())
	n, err := a.file.WriteAt(buf, offset)
	if err != nil {
		return fmt.Errorf("seqnoindex: write at offset %d: %w", offset, err)
	}
	if n != len(buf) {
		return fmt.Errorf("seqnoindex: short write at offset %d: wrote %d of %d bytes", offset, n, len(buf))
	}

	newLength := uint64(offset) + uint64(n)
	a.length.Store(newLength)
	if err := writeLengthSidecar(a.lenPath, newLength); err != nil {
		return fmt.Errorf("seqnoindex: persist length sidecar: %w", err)
	}
	return nil
}

func writeLengthSidecar(path string, length uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], length)
	return os.WriteFile(path, buf[:], 0o644)
}
