package badger

import (
	"encoding/binary"

	"github.com/mediqa/mediqa/core"
)

// Key prefix for chunk records.
const chunkRecordPrefix = "chunk:"

// makeChunkKey generates a key for a chunk record by ID.
// IDs are written in BigEndian order so lexicographic iteration over the
// prefix yields records in ascending ID order.
func makeChunkKey(id core.ID) []byte {
	prefixBytes := []byte(chunkRecordPrefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}
