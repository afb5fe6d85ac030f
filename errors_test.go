package pile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_UnwrapReachesSentinel(t *testing.T) {
	err := newError(KindDuplicateKey, "/tmp/db", []byte("a"), ErrDuplicateKey)
	assert.True(t, errors.Is(err, ErrDuplicateKey))

	var pe *Error
	assert.True(t, errors.As(err, &pe))
	assert.Equal(t, KindDuplicateKey, pe.Kind)
}

func TestError_MessageIncludesKey(t *testing.T) {
	err := newError(KindDuplicateKey, "/tmp/db", []byte("mykey"), ErrDuplicateKey)
	assert.Contains(t, err.Error(), "mykey")
	assert.Contains(t, err.Error(), "duplicate-key")
}

func TestError_MessageFallsBackToPathThenBare(t *testing.T) {
	withPath := newError(KindFileOpen, "/tmp/db", nil, ErrNotDirectory)
	assert.Contains(t, withPath.Error(), "/tmp/db")

	bare := newError(KindIO, "", nil, ErrNotDirectory)
	assert.NotContains(t, bare.Error(), "\"\"")
}

func TestKind_String(t *testing.T) {
	cases := map[Kind]string{
		KindNotDirectory:    "not-directory",
		KindFileOpen:        "file-open",
		KindMmap:            "mmap",
		KindOutOfSpace:      "out-of-space",
		KindDuplicateKey:    "duplicate-key",
		KindEmptyKey:        "empty-key",
		KindIO:              "io",
		KindIndexDivergence: "index-divergence",
		KindUnknown:         "unknown",
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.String())
	}
}
