package pile

import "log/slog"

// DatabaseBuilder configures and opens a Database. The zero value is not
// usable; construct one with NewBuilder, which fills in the spec's
// documented defaults (4 GiB flatfile window, 512 MiB seqno window, and
// the default slog logger). No Serializer is set by default.
type DatabaseBuilder struct {
	flatFileMapSize   int64
	seqNoIndexMapSize int64
	serializer        Serializer
	logger            *slog.Logger
	changefeedSize    int
	hotKeyTopN        int
}

// NewBuilder returns a DatabaseBuilder with the spec's default map sizes.
// A Serializer must still be set with WithSerializer before Open; Open
// fails without one.
func NewBuilder() *DatabaseBuilder {
	return &DatabaseBuilder{
		flatFileMapSize:   defaultFlatFileMapSize,
		seqNoIndexMapSize: defaultSeqNoIndexMapSize,
		logger:            slog.Default(),
		changefeedSize:    4096,
		hotKeyTopN:        100,
	}
}

// FlatFileMapSize sets the maximum bytes addressable in the data mmap,
// bounding total record bytes.
func (b *DatabaseBuilder) FlatFileMapSize(size int64) *DatabaseBuilder {
	b.flatFileMapSize = size
	return b
}

// SeqNoIndexMapSize sets the maximum bytes in the seqno mmap, bounding
// record count to size/8.
func (b *DatabaseBuilder) SeqNoIndexMapSize(size int64) *DatabaseBuilder {
	b.seqNoIndexMapSize = size
	return b
}

// WithSerializer sets the pluggable capability used to encode and decode
// records. Required before Open.
func (b *DatabaseBuilder) WithSerializer(s Serializer) *DatabaseBuilder {
	b.serializer = s
	return b
}

// WithLogger overrides the structured logger used for open/recovery/
// append-failure events. Defaults to slog.Default().
func (b *DatabaseBuilder) WithLogger(logger *slog.Logger) *DatabaseBuilder {
	b.logger = logger
	return b
}

// WithChangefeedCapacity sets the ring-buffer size of the in-process
// append notification bus. Defaults to 4096 retained changes.
func (b *DatabaseBuilder) WithChangefeedCapacity(capacity int) *DatabaseBuilder {
	b.changefeedSize = capacity
	return b
}

// WithHotKeyTopN sets how many entries Database.HotKeys returns when it is
// called with a non-positive n. Defaults to 100. It does not bound the
// tracker: a counter is kept for every distinct key read.
func (b *DatabaseBuilder) WithHotKeyTopN(n int) *DatabaseBuilder {
	b.hotKeyTopN = n
	return b
}

// Open verifies dir exists (creating it if absent), opens the flatfile and
// seqno index beneath it, rebuilds the KeyIndex by scanning the flatfile,
// and returns a ready Database. See database.go for the full algorithm.
func (b *DatabaseBuilder) Open(dir string) (*Database, error) {
	return openDatabase(dir, b)
}
