package pile

import "github.com/gostkin/data-pile/internal/rec"

// Record is an immutable (key, value) byte pair. Keys and values are
// opaque; keys need not be unique across databases but must be unique
// within a single Database.
type Record = rec.Record

// NewRecord builds a Record from the given key and value. The returned
// Record does not copy key or value; callers that mutate the backing
// arrays after calling Append must pass fresh slices for subsequent
// records.
func NewRecord(key, value []byte) Record {
	return rec.New(key, value)
}
