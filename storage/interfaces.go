package storage

import (
	"context"

	"github.com/mediqa/mediqa/core"
)

// ChunkRepository provides operations for the persisted chunk store.
// Records are written once during offline ingestion and read-only at query
// time, so implementations must be safe for concurrent reads.
type ChunkRepository interface {
	// AddChunks adds one or more chunk records to storage.
	// For chunks with Id=0, derives the content-based ID from ContentKey.
	// Sets InsertedAt if not already set.
	// Returns the chunks with IDs and timestamps populated.
	AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// GetChunk retrieves a single chunk by ID.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error)

	// GetChunks retrieves multiple chunks by their IDs.
	// Returns only the chunks that exist (no error for missing chunks).
	GetChunks(ctx context.Context, ids ...core.ID) ([]*core.Chunk, error)

	// AllChunks retrieves every chunk record, ordered by ID.
	// Used to build the in-memory vector index at startup.
	AllChunks(ctx context.Context) ([]*core.Chunk, error)

	// Count returns the number of stored chunk records.
	Count(ctx context.Context) (int, error)

	// DeleteAll removes every chunk record. Used when the index is rebuilt
	// from scratch by the offline ingestion job.
	DeleteAll(ctx context.Context) error

	// Close closes the repository and releases resources.
	Close() error
}
