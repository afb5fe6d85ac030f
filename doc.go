// Package pile implements an append-only, embedded key-value store backed
// by memory-mapped files. It persists a stream of immutable records and
// offers three retrieval modes: lookup by key, lookup by insertion
// sequence number, and forward iteration from a sequence number.
//
// pile is a library component meant to be embedded in a host process, not
// a server: it has no network surface, no deletion or update-in-place, no
// compaction, and no multi-append transactions. A Database is composed of
// three on-disk/in-memory structures that a DatabaseBuilder wires together
// on Open: a FlatFile (the durable byte log), a SeqNoIndex (an mmap'd
// array of offsets for O(1) lookup by sequence number), and a KeyIndex
// (an in-memory ordered map rebuilt by a full scan at open time).
package pile
