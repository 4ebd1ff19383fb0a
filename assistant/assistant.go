package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mediqa/mediqa/answer"
	"github.com/mediqa/mediqa/core"
)

// NoRelevantInfoMessage is returned when neither the local corpus nor the
// web fallback produced any usable context.
const NoRelevantInfoMessage = "No relevant information found. Please rephrase your question."

// GeneralKnowledgeSource is the citation fallback for answers that carry
// no concrete source list.
const GeneralKnowledgeSource = "General medical knowledge"

const (
	defaultTopK             = 6
	defaultMinContextWords  = 250
	insightsTopK            = 8
	insightsMinContextChars = 200

	insightsRetrievalQuery = "combined medical report analysis"
	insightsWebQuery       = "general medical report insights"
	insightsQuestion       = "Summarize insights across all uploaded health documents."
)

// Retriever fetches grounded context for a query from the local corpus.
type Retriever interface {
	Retrieve(ctx context.Context, query, reportText string, k int) (*core.RetrievalResult, error)
}

// Generator produces the final answer text from a query and its context.
type Generator interface {
	Generate(ctx context.Context, query, ragContext string, mode core.ResponseMode, sources []string) (string, []string)
}

// WebSearcher supplies fallback context when local retrieval is thin.
type WebSearcher interface {
	Search(ctx context.Context, query string, numResults int) string
}

// Assistant orchestrates one question-answering turn: retrieve, evaluate
// context strength, optionally augment from the web, then generate. Any
// single call performs at most two web searches: one here when retrieved
// context is thin, and one inside the generator's self-correction pass.
type Assistant struct {
	retriever Retriever
	generator Generator
	searcher  WebSearcher
	logger    *slog.Logger

	topK            int
	minContextWords int
}

// Option configures an Assistant.
type Option func(*Assistant) error

// WithSearcher enables the evaluation-stage web fallback.
func WithSearcher(searcher WebSearcher) Option {
	return func(a *Assistant) error {
		if searcher == nil {
			return fmt.Errorf("searcher cannot be nil")
		}
		a.searcher = searcher
		return nil
	}
}

// WithTopK sets how many chunks each question retrieves.
func WithTopK(k int) Option {
	return func(a *Assistant) error {
		if k <= 0 {
			return fmt.Errorf("topK must be positive, got %d", k)
		}
		a.topK = k
		return nil
	}
}

// WithMinContextWords sets the word count below which retrieved context is
// considered thin and web augmentation kicks in.
func WithMinContextWords(n int) Option {
	return func(a *Assistant) error {
		if n < 0 {
			return fmt.Errorf("minContextWords cannot be negative, got %d", n)
		}
		a.minContextWords = n
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assistant) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		a.logger = logger.With("component", "assistant")
		return nil
	}
}

// New creates an Assistant. The searcher is optional; without it no web
// augmentation happens and thin context goes to the generator as-is.
func New(retriever Retriever, generator Generator, opts ...Option) (*Assistant, error) {
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if generator == nil {
		return nil, ErrGeneratorRequired
	}

	a := &Assistant{
		retriever:       retriever,
		generator:       generator,
		logger:          slog.Default().With("component", "assistant"),
		topK:            defaultTopK,
		minContextWords: defaultMinContextWords,
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Answer runs one full question-answering turn. reportText is optional
// uploaded document text used to enrich retrieval. Answer never returns an
// error: retrieval failures degrade to web-or-nothing, and generation maps
// its own failures onto fixed messages.
func (a *Assistant) Answer(ctx context.Context, query, reportText string, mode core.ResponseMode) *core.Answer {
	result := a.retrieve(ctx, query, reportText, a.topK)

	ragContext := result.Context
	sources := result.Sources
	sourceUsed := core.SourceRAG

	if wordCount(ragContext) < a.minContextWords && a.searcher != nil {
		a.logger.Info("retrieved context is thin, fetching web results",
			"words", wordCount(ragContext), "accepted", result.Accepted)
		if webContext := a.searcher.Search(ctx, query, 0); strings.TrimSpace(webContext) != "" {
			ragContext = joinContext(ragContext, webContext)
			sources = append(sources, answer.WebSearchSource)
			sourceUsed = core.SourceWebSearch
		}
	}

	if strings.TrimSpace(ragContext) == "" {
		return &core.Answer{
			Text:       NoRelevantInfoMessage,
			Sources:    withFallback(dedupe(sources)),
			SourceUsed: sourceUsed,
		}
	}

	text, finalSources := a.generator.Generate(ctx, query, ragContext, mode, dedupe(sources))
	return &core.Answer{
		Text:       text,
		Sources:    withFallback(finalSources),
		SourceUsed: sourceUsed,
	}
}

// Insights summarizes the themes across uploaded documents. Retrieval runs
// against a synthetic analysis query enriched by the report text; when the
// corpus has little to say the whole context is replaced by a general web
// search rather than augmented.
func (a *Assistant) Insights(ctx context.Context, reportText string) *core.Answer {
	result := a.retrieve(ctx, insightsRetrievalQuery, reportText, insightsTopK)

	ragContext := result.Context
	sources := result.Sources
	sourceUsed := core.SourceRAG

	if len(strings.TrimSpace(ragContext)) < insightsMinContextChars && a.searcher != nil {
		a.logger.Info("insufficient corpus coverage for insights, using web results")
		if webContext := a.searcher.Search(ctx, insightsWebQuery, 0); strings.TrimSpace(webContext) != "" {
			ragContext = webContext
			sources = []string{answer.WebSearchSource}
			sourceUsed = core.SourceWebSearch
		}
	}

	if strings.TrimSpace(ragContext) == "" {
		return &core.Answer{
			Text:       NoRelevantInfoMessage,
			Sources:    withFallback(dedupe(sources)),
			SourceUsed: sourceUsed,
		}
	}

	text, finalSources := a.generator.Generate(ctx, insightsQuestion, ragContext, core.ModeDetailed, dedupe(sources))
	return &core.Answer{
		Text:       text,
		Sources:    withFallback(finalSources),
		SourceUsed: sourceUsed,
	}
}

// retrieve wraps the retriever, degrading failures to an empty rejected
// result so a dead embedding service does not take the assistant down.
func (a *Assistant) retrieve(ctx context.Context, query, reportText string, k int) *core.RetrievalResult {
	result, err := a.retriever.Retrieve(ctx, query, reportText, k)
	if err != nil {
		a.logger.Error("retrieval failed, continuing without local context", "error", err)
		return &core.RetrievalResult{Sources: []string{}}
	}
	return result
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

func joinContext(ragContext, webContext string) string {
	if ragContext == "" {
		return webContext
	}
	return ragContext + "\n\n" + webContext
}

func dedupe(sources []string) []string {
	seen := make(map[string]bool, len(sources))
	result := make([]string, 0, len(sources))
	for _, s := range sources {
		if seen[s] {
			continue
		}
		seen[s] = true
		result = append(result, s)
	}
	return result
}

func withFallback(sources []string) []string {
	if len(sources) == 0 {
		return []string{GeneralKnowledgeSource}
	}
	return sources
}
