package retrieval

import (
	"context"
	"log/slog"
	"slices"

	"github.com/mediqa/mediqa/core"
	"github.com/mediqa/mediqa/storage"
)

// NoHit is the sentinel position for "no such neighbor", returned when the
// index holds fewer entries than requested.
const NoHit = -1

// Hit is a single nearest-neighbor result.
type Hit struct {
	// Distance is the squared L2 distance to the query vector.
	Distance float32
	// Position identifies the indexed chunk, or NoHit for padding entries.
	Position int
}

// Index is an immutable flat vector index over the chunk store.
// It is built once at startup from the repository and shared read-only by all
// concurrent queries; rebuilding means constructing a new Index. Each entry
// carries its chunk, so the index cannot drift out of sync with the metadata.
type Index struct {
	chunks []*core.Chunk
	logger *slog.Logger
}

// BuildIndex loads every embedded chunk from the repository into a new Index.
// Chunks without vectors are skipped with a warning; they cannot be searched.
// An empty repository yields an empty, usable index.
func BuildIndex(ctx context.Context, repo storage.ChunkRepository) (*Index, error) {
	logger := slog.Default().With("component", "vector-index")

	all, err := repo.AllChunks(ctx)
	if err != nil {
		return nil, err
	}

	chunks := make([]*core.Chunk, 0, len(all))
	for _, chunk := range all {
		if len(chunk.Vector) == 0 {
			logger.Warn("skipping chunk without embedding", "chunk", chunk.ContentKey())
			continue
		}
		chunks = append(chunks, chunk)
	}

	logger.Info("vector index built", "chunks", len(chunks), "skipped", len(all)-len(chunks))

	return &Index{
		chunks: chunks,
		logger: logger,
	}, nil
}

// Len returns the number of indexed chunks.
func (ix *Index) Len() int {
	return len(ix.chunks)
}

// Chunk returns the chunk at the given index position.
func (ix *Index) Chunk(position int) *core.Chunk {
	return ix.chunks[position]
}

// Search returns the k nearest entries to the query vector by squared L2
// distance, ordered nearest first. When the index holds fewer than k entries
// the result is padded with NoHit positions, so the returned slice always has
// length k. Ties in distance keep index order.
func (ix *Index) Search(vector []float32, k int) []Hit {
	if k <= 0 {
		return nil
	}

	hits := make([]Hit, 0, len(ix.chunks))
	for i, chunk := range ix.chunks {
		hits = append(hits, Hit{
			Distance: squaredL2(vector, chunk.Vector),
			Position: i,
		})
	}

	// Stable ordering: distance ascending, index order on ties
	slices.SortStableFunc(hits, func(a, b Hit) int {
		if a.Distance < b.Distance {
			return -1
		}
		if a.Distance > b.Distance {
			return 1
		}
		return 0
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	for len(hits) < k {
		hits = append(hits, Hit{Position: NoHit})
	}
	return hits
}
