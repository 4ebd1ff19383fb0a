package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mediqa/mediqa/ai"
	"github.com/mediqa/mediqa/core"
)

// Relevance thresholds on the average squared L2 distance of the top-k hits.
// On normalized embeddings the distance is a monotone proxy for semantic
// similarity: below 0.4 is a strong match, 0.4-0.55 acceptable, above 0.55
// likely off-topic.
const (
	// defaultMaxAvgDistance rejects retrievals whose average distance exceeds it.
	defaultMaxAvgDistance = 0.5

	// defaultKeywordAvgDistance is the stricter cutoff applied when the top
	// chunks contain no domain keyword at all.
	defaultKeywordAvgDistance = 0.55

	// keywordPreviewChunks is how many top-ranked chunks the lexical gate
	// inspects.
	keywordPreviewChunks = 3
)

// domainKeywords is the lexical signal the second gate stage looks for.
// A single hard distance cutoff risks rejecting borderline-but-relevant hits
// purely on score; this check recovers precision without another model call.
var domainKeywords = []string{
	"health", "disease", "treatment", "symptom", "diagnosis",
	"medical", "nutrition", "blood", "doctor",
}

// Retriever performs semantic retrieval over the vector index with report
// keyword enrichment and a two-stage relevance gate.
type Retriever struct {
	index    *Index
	embedder ai.Embedder
	logger   *slog.Logger

	maxAvgDistance     float64
	keywordAvgDistance float64
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithThresholds overrides the relevance gate distance cutoffs.
func WithThresholds(maxAvg, keywordAvg float64) Option {
	return func(r *Retriever) error {
		if maxAvg <= 0 || keywordAvg <= 0 {
			return fmt.Errorf("thresholds must be positive, got %v and %v", maxAvg, keywordAvg)
		}
		r.maxAvgDistance = maxAvg
		r.keywordAvgDistance = keywordAvg
		return nil
	}
}

// NewRetriever creates a new retriever over the given index.
func NewRetriever(index *Index, embedder ai.Embedder, opts ...Option) (*Retriever, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	r := &Retriever{
		index:              index,
		embedder:           embedder,
		logger:             slog.Default(),
		maxAvgDistance:     defaultMaxAvgDistance,
		keywordAvgDistance: defaultKeywordAvgDistance,
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Retrieve returns the top-k chunks for the query together with an aggregate
// confidence score and the relevance decision.
//
// When reportText is non-empty its salient capitalized phrases replace the
// query before embedding. An empty index yields an empty, rejected result
// without error; a rejected retrieval still carries the accumulated source
// labels so the caller may cite them.
func (r *Retriever) Retrieve(ctx context.Context, query, reportText string, k int) (*core.RetrievalResult, error) {
	return r.RetrieveWithMonitor(ctx, query, reportText, k, nil)
}

// RetrieveWithMonitor is Retrieve with observation hooks.
// The monitor receives callbacks at each stage of the retrieval process.
func (r *Retriever) RetrieveWithMonitor(ctx context.Context, query, reportText string, k int, monitor Monitor) (*core.RetrievalResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(query)

	// Degraded-data condition, not an error: no index has been built yet.
	if r.index.Len() == 0 {
		r.logger.Warn("vector index is empty, skipping retrieval")
		result := &core.RetrievalResult{Sources: []string{}}
		monitor.Finish(result)
		return result, nil
	}

	// 1. Query enrichment from the uploaded report, if any
	enriched := enrichQuery(query, reportText)
	if enriched != query {
		monitor.QueryEnriched(enriched, len(strings.Fields(enriched)))
		r.logger.Debug("query enriched from report keywords", "keywords", len(strings.Fields(enriched)))
	}

	// 2. Embed the (possibly enriched) query
	embedding, err := r.embedder.EmbedText(ctx, enriched)
	if err != nil {
		r.logger.Error("error generating embedding for query", "err", err)
		return nil, err
	}
	embedding = Normalize(embedding)

	// 3. Nearest-neighbor search
	hits := r.index.Search(embedding, k)
	monitor.AfterSearch(hits)

	// 4. Accumulate distances, sources, and formatted context blocks
	var (
		scored        []core.ScoredChunk
		blocks        []string
		sources       []string
		seenSource    = make(map[string]bool)
		totalDistance float64
	)
	for _, hit := range hits {
		if hit.Position == NoHit {
			continue
		}
		chunk := r.index.Chunk(hit.Position)
		totalDistance += float64(hit.Distance)

		for _, src := range chunk.Sources {
			if !seenSource[src] {
				seenSource[src] = true
				sources = append(sources, src)
			}
		}

		text := strings.ReplaceAll(strings.TrimSpace(chunk.Text), "\n", " ")
		blocks = append(blocks, fmt.Sprintf("[%s - %s]\n%s\n", chunk.TopicTitle, chunk.Section, text))
		scored = append(scored, core.ScoredChunk{Chunk: chunk, Distance: hit.Distance})
	}

	// 5. Average distance over the hits actually found
	found := len(scored)
	avgDistance := totalDistance / float64(max(found, 1))
	r.logger.Debug("retrieval average distance", "avgDistance", avgDistance, "chunks", found)

	result := &core.RetrievalResult{
		Chunks:      scored,
		Sources:     sources,
		AvgDistance: avgDistance,
	}

	// 6. Relevance gate, stage one: hard distance cutoff
	if avgDistance > r.maxAvgDistance || found == 0 {
		r.logger.Info("retrieval context weak, rejecting", "avgDistance", avgDistance)
		monitor.Rejected(avgDistance, "weak match")
		monitor.Finish(result)
		return result, nil
	}

	// Stage two: lexical domain check over the top chunks
	preview := strings.ToLower(strings.Join(blocks[:min(keywordPreviewChunks, len(blocks))], " "))
	if !containsAny(preview, domainKeywords) && avgDistance > r.keywordAvgDistance {
		r.logger.Info("context lacks domain relevance, rejecting", "avgDistance", avgDistance)
		monitor.Rejected(avgDistance, "no domain keyword")
		monitor.Finish(result)
		return result, nil
	}

	// Accept: combine the ranked blocks into one context string
	result.Context = strings.Join(blocks, "\n\n")
	result.Accepted = true
	monitor.Accepted(avgDistance)
	monitor.Finish(result)
	return result, nil
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
