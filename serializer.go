package pile

import "github.com/gostkin/data-pile/internal/rec"

// Serializer encodes and decodes a Record to/from a self-delimiting byte
// range. It is stateless and must be cheap to use from multiple
// goroutines: the core never assumes exclusive access to a Serializer
// value. The on-disk record layout is entirely owned by the Serializer —
// FlatFile and SeqNoIndex never parse record contents themselves.
type Serializer = rec.Serializer
