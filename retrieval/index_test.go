package retrieval

import (
	"context"
	"math"
	"testing"

	"github.com/mediqa/mediqa/core"
	"github.com/mediqa/mediqa/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storedChunk(t *testing.T, filename string, chunkId int, text string, vector []float32) *core.Chunk {
	t.Helper()
	return &core.Chunk{
		Filename:   filename,
		TopicTitle: "Topic",
		Section:    "General",
		ChunkId:    chunkId,
		Text:       text,
		Sources:    []string{"WHO"},
		Vector:     vector,
	}
}

func TestBuildIndex(t *testing.T) {
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	t.Run("empty repository", func(t *testing.T) {
		ix, err := BuildIndex(ctx, repo)
		require.NoError(t, err)
		assert.Equal(t, 0, ix.Len())
	})

	t.Run("skips chunks without vectors", func(t *testing.T) {
		_, err := repo.AddChunks(ctx,
			storedChunk(t, "a.pdf", 0, "embedded", []float32{1, 0}),
			storedChunk(t, "a.pdf", 1, "not embedded", nil),
		)
		require.NoError(t, err)

		ix, err := BuildIndex(ctx, repo)
		require.NoError(t, err)
		assert.Equal(t, 1, ix.Len())
	})
}

func TestIndexSearch(t *testing.T) {
	ix := &Index{chunks: []*core.Chunk{
		{Text: "north", Vector: []float32{0, 1}},
		{Text: "east", Vector: []float32{1, 0}},
		{Text: "northeast", Vector: []float32{0.7071, 0.7071}},
	}}

	t.Run("orders by distance ascending", func(t *testing.T) {
		hits := ix.Search([]float32{0, 1}, 3)
		require.Len(t, hits, 3)
		assert.Equal(t, 0, hits[0].Position) // exact match first
		assert.Equal(t, 2, hits[1].Position)
		assert.Equal(t, 1, hits[2].Position)
		assert.InDelta(t, 0.0, hits[0].Distance, 1e-6)
		assert.InDelta(t, 2.0, hits[2].Distance, 1e-6)
	})

	t.Run("pads with NoHit when k exceeds size", func(t *testing.T) {
		hits := ix.Search([]float32{0, 1}, 5)
		require.Len(t, hits, 5)
		assert.Equal(t, NoHit, hits[3].Position)
		assert.Equal(t, NoHit, hits[4].Position)
	})

	t.Run("truncates to k", func(t *testing.T) {
		hits := ix.Search([]float32{0, 1}, 1)
		require.Len(t, hits, 1)
		assert.Equal(t, 0, hits[0].Position)
	})

	t.Run("non-positive k", func(t *testing.T) {
		assert.Nil(t, ix.Search([]float32{0, 1}, 0))
	})

	t.Run("ties keep index order", func(t *testing.T) {
		tied := &Index{chunks: []*core.Chunk{
			{Text: "first", Vector: []float32{1, 0}},
			{Text: "second", Vector: []float32{1, 0}},
		}}
		hits := tied.Search([]float32{0, 1}, 2)
		assert.Equal(t, 0, hits[0].Position)
		assert.Equal(t, 1, hits[1].Position)
	})

	t.Run("dimension mismatch ranks last", func(t *testing.T) {
		mixed := &Index{chunks: []*core.Chunk{
			{Text: "stale model", Vector: []float32{0, 1, 0}},
			{Text: "far but comparable", Vector: []float32{1, 0}},
		}}
		hits := mixed.Search([]float32{0, 1}, 2)
		require.Len(t, hits, 2)
		assert.Equal(t, 1, hits[0].Position)
		assert.Equal(t, 0, hits[1].Position)
		assert.Equal(t, float32(math.MaxFloat32), hits[1].Distance,
			"vectors from a different embedding dimension can never be relevant")
	})
}

func TestNormalize(t *testing.T) {
	t.Run("unit length", func(t *testing.T) {
		v := Normalize([]float32{3, 4})
		assert.InDelta(t, 0.6, v[0], 1e-6)
		assert.InDelta(t, 0.8, v[1], 1e-6)
	})

	t.Run("zero vector stays zero", func(t *testing.T) {
		v := Normalize([]float32{0, 0})
		assert.Equal(t, []float32{0, 0}, v)
	})

	t.Run("empty vector", func(t *testing.T) {
		assert.Empty(t, Normalize(nil))
	})
}
