package pile

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/gostkin/data-pile/internal/changefeed"
	"github.com/gostkin/data-pile/internal/flatfile"
	"github.com/gostkin/data-pile/internal/keyindex"
	"github.com/gostkin/data-pile/internal/rec"
	"github.com/gostkin/data-pile/internal/seqnoindex"
)

const (
	flatFileName = "data"
	seqNoName    = "seqno"
)

// Database composes a FlatFile, a SeqNoIndex, and a KeyIndex into the
// append-only embedded key-value store described by the design: Append is
// the only mutating operation, and Get/GetBySeqno/IterFromSeqno are the
// three retrieval modes.
type Database struct {
	dir        string
	serializer Serializer
	logger     *slog.Logger

	ff    *flatfile.FlatFile
	seq   *seqnoindex.SeqNoIndex
	index *keyindex.KeyIndex

	feed    *changefeed.Feed
	hotKeys *hotKeyTracker

	appendMu sync.Mutex
}

func openDatabase(dir string, b *DatabaseBuilder) (*Database, error) {
	if b.serializer == nil {
		return nil, newError(KindNotDirectory, dir, nil, fmt.Errorf("pile: DatabaseBuilder.WithSerializer must be set before Open"))
	}

	info, err := os.Stat(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, newError(KindNotDirectory, dir, nil, err)
		}
		if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
			return nil, newError(KindNotDirectory, dir, nil, mkErr)
		}
	} else if !info.IsDir() {
		return nil, newError(KindNotDirectory, dir, nil, ErrNotDirectory)
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	ff, err := flatfile.Open(filepath.Join(dir, flatFileName), b.flatFileMapSize, b.serializer)
	if err != nil {
		return nil, newError(KindFileOpen, dir, nil, err)
	}

	seq, err := seqnoindex.Open(filepath.Join(dir, seqNoName), b.seqNoIndexMapSize)
	if err != nil {
		ff.Close()
		return nil, newError(KindFileOpen, dir, nil, err)
	}

	index := keyindex.New()
	offsets, recordCount, err := rebuildKeyIndex(ff, b.serializer, index)
	if err != nil {
		ff.Close()
		seq.Close()
		return nil, newError(KindIO, dir, nil, err)
	}

	if err := reconcileSeqNoIndex(seq, offsets); err != nil {
		ff.Close()
		seq.Close()
		return nil, err
	}

	logger.Info("pile: database opened", "dir", dir, "records", recordCount)

	return &Database{
		dir:        dir,
		serializer: b.serializer,
		logger:     logger,
		ff:         ff,
		seq:        seq,
		index:      index,
		feed:       changefeed.New(b.changefeedSize),
		hotKeys:    newHotKeyTracker(b.hotKeyTopN, 0),
	}, nil
}

// rebuildKeyIndex scans the flatfile from offset 0, populating index and
// returning every record's offset in insertion order — the same scan the
// spec's recovery path performs, reused here to also recompute the seqno
// index's expected state.
func rebuildKeyIndex(ff *flatfile.FlatFile, serializer Serializer, index *keyindex.KeyIndex) ([]uint64, int, error) {
	var offsets []uint64
	it := ff.IterFrom(serializer, 0)
	for {
		offset := it.Offset()
		r, ok := it.Next()
		if !ok {
			break
		}
		index.Put(r.Key, offset)
		offsets = append(offsets, offset)
	}
	return offsets, len(offsets), nil
}

// reconcileSeqNoIndex implements the spec's recommended divergence policy
// (§7, §9): if the seqno index is short relative to the flatfile scan, the
// missing entries are re-derived and appended. If it somehow has more
// entries than the flatfile accounts for, Open refuses to guess and fails
// with ErrIndexDivergence.
func reconcileSeqNoIndex(seq *seqnoindex.SeqNoIndex, offsets []uint64) error {
	have := seq.Len()
	want := uint64(len(offsets))

	if have > want {
		return newError(KindIndexDivergence, "", nil, ErrIndexDivergence)
	}
	if have == want {
		return nil
	}
	missing := offsets[have:]
	if err := seq.Append(missing); err != nil {
		return newError(KindIO, "", nil, err)
	}
	return nil
}

// Append atomically appends a batch of records. The batch is rejected in
// full if any key is already present in the KeyIndex, or if two records in
// the batch share a key. On success, every record becomes visible to
// Get, GetBySeqno, and IterFromSeqno.
func (db *Database) Append(records []Record) error {
	if len(records) == 0 {
		return nil
	}

	db.appendMu.Lock()
	defer db.appendMu.Unlock()

	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if len(r.Key) == 0 {
			return newError(KindEmptyKey, db.dir, r.Key, ErrEmptyKey)
		}
		k := string(r.Key)
		if _, dup := seen[k]; dup {
			return newError(KindDuplicateKey, db.dir, r.Key, ErrDuplicateKey)
		}
		seen[k] = struct{}{}
		if db.index.Contains(r.Key) {
			return newError(KindDuplicateKey, db.dir, r.Key, ErrDuplicateKey)
		}
	}

	offsets, err := db.ff.Append(db.serializer, records)
	if err != nil {
		db.logger.Error("pile: append failed", "dir", db.dir, "records", len(records), "error", err)
		if errors.Is(err, flatfile.ErrOutOfSpace) {
			return newError(KindOutOfSpace, db.dir, nil, ErrOutOfSpace)
		}
		return newError(KindIO, db.dir, nil, err)
	}

	for i, r := range records {
		db.index.Put(r.Key, offsets[i])
	}

	seqNoStart := db.seq.Len()
	if err := db.seq.Append(offsets); err != nil {
		db.logger.Warn("pile: seqno index append failed after durable flatfile append; will repair on next open",
			"dir", db.dir, "error", err)
		if errors.Is(err, seqnoindex.ErrOutOfSpace) {
			return newError(KindOutOfSpace, db.dir, nil, ErrOutOfSpace)
		}
		return newError(KindIO, db.dir, nil, err)
	}

	for i, r := range records {
		db.feed.Publish(changefeed.Change{
			SeqNo:  seqNoStart + uint64(i),
			Offset: offsets[i],
			Key:    append([]byte(nil), r.Key...),
		})
	}

	return nil
}

// Get looks up a record by key.
func (db *Database) Get(key []byte) (Record, bool, error) {
	db.hotKeys.observe(string(key))

	offset, ok := db.index.Get(key)
	if !ok {
		return rec.Record{}, false, nil
	}
	r, ok, err := db.ff.GetRecordAtOffset(db.serializer, offset)
	if err != nil {
		return rec.Record{}, false, newError(KindIO, db.dir, key, err)
	}
	return r, ok, nil
}

// GetBySeqno looks up a record by its zero-based insertion sequence
// number.
func (db *Database) GetBySeqno(seqno uint64) (Record, bool, error) {
	db.hotKeys.observe(fmt.Sprintf("#%d", seqno))

	offset, ok := db.seq.GetPointerToValue(seqno)
	if !ok {
		return rec.Record{}, false, nil
	}
	r, ok, err := db.ff.GetRecordAtOffset(db.serializer, offset)
	if err != nil {
		return rec.Record{}, false, newError(KindIO, db.dir, nil, err)
	}
	return r, ok, nil
}

// IterFromSeqno returns an Iterator walking records forward from seqno, in
// insertion order, bounded by the flatfile length observed at call time.
// It returns (nil, false) if seqno is at or past the current record
// count.
func (db *Database) IterFromSeqno(seqno uint64) (*Iterator, bool) {
	offset, ok := db.seq.GetPointerToValue(seqno)
	if !ok {
		return nil, false
	}
	return &Iterator{inner: db.ff.IterFrom(db.serializer, offset)}, true
}

// Len returns the number of records currently in the database.
func (db *Database) Len() uint64 {
	return db.seq.Len()
}

// Subscribe returns a subscription id and a channel receiving every
// change appended after the call, via the in-process changefeed.
func (db *Database) Subscribe(bufSize int) (uint64, <-chan changefeed.Change) {
	return db.feed.Subscribe(bufSize)
}

// Unsubscribe cancels a subscription created with Subscribe.
func (db *Database) Unsubscribe(id uint64) {
	db.feed.Unsubscribe(id)
}

// ChangesSince returns the retained changes with seqno > afterSeqNo.
// Retention is bounded by the changefeed's ring buffer capacity; callers
// needing a durable tail should use IterFromSeqno instead.
func (db *Database) ChangesSince(afterSeqNo uint64) []changefeed.Change {
	return db.feed.Since(afterSeqNo)
}

// HotKeys returns the n most frequently read keys (by Get/GetBySeqno
// calls) seen since the Database was opened, descending by access count.
func (db *Database) HotKeys(n int) []HotKeyEntry {
	return db.hotKeys.top(n)
}

// Close releases the flatfile and seqno index mmaps and file handles.
func (db *Database) Close() error {
	var errs []error
	if err := db.ff.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := db.seq.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return newError(KindIO, db.dir, nil, errs[0])
	}
	return nil
}

