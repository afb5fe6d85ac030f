package pile

import (
	"errors"
	"fmt"
)

// Kind classifies the cause of an Error, matching the taxonomy in the
// design's error-handling section.
type Kind int

const (
	// KindUnknown is the zero value; Error never constructs it directly.
	KindUnknown Kind = iota
	// KindNotDirectory means the configured path exists and is not a
	// directory, or a directory could not be created there.
	KindNotDirectory
	// KindFileOpen means opening, creating, extending, or memory-mapping an
	// on-disk file failed while opening a Database.
	KindFileOpen
	// KindMmap names a failure to establish the memory map. Open reports
	// mmap failures as KindFileOpen, so no pile operation returns KindMmap.
	KindMmap
	// KindOutOfSpace means an append would exceed the configured mmap
	// size for FlatFile or SeqNoIndex.
	KindOutOfSpace
	// KindDuplicateKey means Append was called with a key already present
	// in the KeyIndex, or with a key repeated within the same batch.
	KindDuplicateKey
	// KindEmptyKey means Append was called with a zero-length key. Empty
	// keys are rejected so that a decoded record with an empty key and an
	// empty value — indistinguishable from the mmap's zero-fill padding —
	// can never be a genuine record, which is what lets open-time length
	// recovery stop at the true end-of-log.
	KindEmptyKey
	// KindIO means a write or read against the underlying file failed.
	KindIO
	// KindIndexDivergence means the seqno index was found, on Open, to
	// hold more entries than the flatfile scan accounts for — a state the
	// append protocol should never produce, and which Open refuses to
	// silently paper over.
	KindIndexDivergence
)

func (k Kind) String() string {
	switch k {
	case KindNotDirectory:
		return "not-directory"
	case KindFileOpen:
		return "file-open"
	case KindMmap:
		return "mmap"
	case KindOutOfSpace:
		return "out-of-space"
	case KindDuplicateKey:
		return "duplicate-key"
	case KindEmptyKey:
		return "empty-key"
	case KindIO:
		return "io"
	case KindIndexDivergence:
		return "index-divergence"
	default:
		return "unknown"
	}
}

// Error is the error type returned by every pile operation that can fail.
// It carries enough context (Kind, Path, Key) to let a caller branch on
// the failure category with errors.As, and wraps the underlying OS/mmap
// error so errors.Is still reaches it.
type Error struct {
	Kind Kind
	Path string
	Key  []byte
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Key != nil:
		return fmt.Sprintf("pile: %s: key %q: %v", e.Kind, e.Key, e.Err)
	case e.Path != "":
		return fmt.Sprintf("pile: %s: %s: %v", e.Kind, e.Path, e.Err)
	default:
		return fmt.Sprintf("pile: %s: %v", e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, path string, key []byte, err error) *Error {
	return &Error{Kind: kind, Path: path, Key: key, Err: err}
}

// Sentinel errors for the common cases, comparable with errors.Is without
// needing an *Error type assertion first.
var (
	ErrNotDirectory    = errors.New("pile: path is not a directory")
	ErrOutOfSpace      = errors.New("pile: append would exceed configured mmap size")
	ErrDuplicateKey    = errors.New("pile: key already exists")
	ErrEmptyKey        = errors.New("pile: key must not be empty")
	ErrIndexDivergence = errors.New("pile: seqno index diverges from flatfile")
)
