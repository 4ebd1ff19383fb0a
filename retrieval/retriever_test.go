package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/mediqa/mediqa/ai/mock"
	"github.com/mediqa/mediqa/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedEmbedder(vector []float32) *mock.MockEmbedder {
	e := mock.NewMockEmbedder()
	e.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return vector, nil
	}
	return e
}

func indexOf(chunks ...*core.Chunk) *Index {
	return &Index{chunks: chunks}
}

func TestNewRetriever(t *testing.T) {
	ix := indexOf()

	t.Run("valid", func(t *testing.T) {
		r, err := NewRetriever(ix, mock.NewMockEmbedder())
		require.NoError(t, err)
		assert.NotNil(t, r)
	})

	t.Run("nil index", func(t *testing.T) {
		_, err := NewRetriever(nil, mock.NewMockEmbedder())
		assert.Equal(t, ErrIndexRequired, err)
	})

	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewRetriever(ix, nil)
		assert.Equal(t, ErrEmbedderRequired, err)
	})
}

func TestRetrieve_EmptyIndex(t *testing.T) {
	r, err := NewRetriever(indexOf(), mock.NewMockEmbedder())
	require.NoError(t, err)

	for _, k := range []int{1, 6, 100} {
		result, err := r.Retrieve(context.Background(), "what is hypertension", "", k)
		require.NoError(t, err)
		assert.False(t, result.Accepted)
		assert.Empty(t, result.Context)
		assert.Empty(t, result.Sources)
	}
}

func TestRetrieve_AcceptsStrongMatch(t *testing.T) {
	chunk := &core.Chunk{
		Filename:   "bp.pdf",
		TopicTitle: "Hypertension",
		Section:    "Symptoms",
		Text:       "High blood pressure often has no symptoms but damages health over time.",
		Sources:    []string{"WHO", "CDC"},
		Vector:     []float32{1, 0},
	}
	r, err := NewRetriever(indexOf(chunk), fixedEmbedder([]float32{1, 0}))
	require.NoError(t, err)

	result, err := r.Retrieve(context.Background(), "symptoms of hypertension", "", 3)
	require.NoError(t, err)

	assert.True(t, result.Accepted)
	assert.InDelta(t, 0.0, result.AvgDistance, 1e-6)
	assert.Contains(t, result.Context, "[Hypertension - Symptoms]")
	assert.Contains(t, result.Context, "High blood pressure")
	assert.Equal(t, []string{"WHO", "CDC"}, result.Sources)
}

func TestRetrieve_RejectsWeakMatch_KeepsSources(t *testing.T) {
	chunk := &core.Chunk{
		Filename:   "bp.pdf",
		TopicTitle: "Hypertension",
		Section:    "General",
		Text:       "Blood pressure basics and health guidance.",
		Sources:    []string{"ICMR"},
		Vector:     []float32{1, 0},
	}
	// Orthogonal query vector: squared L2 distance 2.0, far above the cutoff
	r, err := NewRetriever(indexOf(chunk), fixedEmbedder([]float32{0, 1}))
	require.NoError(t, err)

	result, err := r.Retrieve(context.Background(), "unrelated question", "", 3)
	require.NoError(t, err)

	assert.False(t, result.Accepted)
	assert.Empty(t, result.Context)
	assert.Equal(t, []string{"ICMR"}, result.Sources, "weak matches still return sources for citation")
	assert.Greater(t, result.AvgDistance, 0.5)
}

func TestRetrieve_RejectsOffDomainHighDistance(t *testing.T) {
	chunk := &core.Chunk{
		Filename:   "misc.pdf",
		TopicTitle: "Miscellany",
		Section:    "General",
		Text:       "An unrelated passage about architecture and bridges.",
		Sources:    []string{"Unknown"},
		Vector:     []float32{1, 0},
	}
	// Distance well above both thresholds, and no domain keyword in the text
	r, err := NewRetriever(indexOf(chunk), fixedEmbedder([]float32{0.6, 0.8}))
	require.NoError(t, err)

	result, err := r.Retrieve(context.Background(), "tell me about bridges", "", 3)
	require.NoError(t, err)
	assert.False(t, result.Accepted)
	assert.Empty(t, result.Context)
}

func TestRetrieve_AcceptsCloseMatchWithoutKeyword(t *testing.T) {
	// The lexical gate is only consulted above the stricter distance cutoff;
	// a genuinely close match passes even without a domain keyword.
	chunk := &core.Chunk{
		Filename:   "misc.pdf",
		TopicTitle: "Hydration",
		Section:    "General",
		Text:       "Drink water regularly throughout the day.",
		Sources:    []string{"WHO"},
		Vector:     []float32{1, 0},
	}
	r, err := NewRetriever(indexOf(chunk), fixedEmbedder([]float32{1, 0}))
	require.NoError(t, err)

	result, err := r.Retrieve(context.Background(), "how much water", "", 1)
	require.NoError(t, err)
	assert.True(t, result.Accepted)
}

func TestRetrieve_Idempotent(t *testing.T) {
	chunk := &core.Chunk{
		Filename:   "bp.pdf",
		TopicTitle: "Hypertension",
		Section:    "Causes",
		Text:       "Causes of high blood pressure include genetics and diet.",
		Sources:    []string{"WHO"},
		Vector:     mock.DeterministicVector("Causes of high blood pressure include genetics and diet.", 384),
	}
	r, err := NewRetriever(indexOf(chunk), mock.NewMockEmbedder())
	require.NoError(t, err)

	ctx := context.Background()
	first, err := r.Retrieve(ctx, "what causes hypertension", "", 6)
	require.NoError(t, err)
	second, err := r.Retrieve(ctx, "what causes hypertension", "", 6)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRetrieve_ReportEnrichment(t *testing.T) {
	var embedded string
	e := mock.NewMockEmbedder()
	e.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		embedded = text
		return []float32{1, 0}, nil
	}

	chunk := &core.Chunk{
		Filename: "bp.pdf", TopicTitle: "T", Section: "S",
		Text: "blood pressure health", Sources: []string{"WHO"}, Vector: []float32{1, 0},
	}
	r, err := NewRetriever(indexOf(chunk), e)
	require.NoError(t, err)

	_, err = r.Retrieve(context.Background(), "summarize my report",
		"Findings: Iron Deficiency Anemia with low Hemoglobin levels.", 3)
	require.NoError(t, err)

	assert.Equal(t, "Findings Iron Deficiency Anemia Hemoglobin", embedded,
		"report keywords replace the raw query before embedding")
}

func TestRetrieve_EmbedderFailure(t *testing.T) {
	e := mock.NewMockEmbedder()
	e.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("embedding service down")
	}

	chunk := &core.Chunk{
		Filename: "bp.pdf", TopicTitle: "T", Section: "S",
		Text: "health", Sources: []string{"WHO"}, Vector: []float32{1, 0},
	}
	r, err := NewRetriever(indexOf(chunk), e)
	require.NoError(t, err)

	_, err = r.Retrieve(context.Background(), "anything", "", 3)
	assert.Error(t, err)
}
