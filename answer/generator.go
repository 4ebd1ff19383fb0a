package answer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mediqa/mediqa/ai"
	"github.com/mediqa/mediqa/core"
)

// User-facing degradation messages. The caller prints these verbatim, so
// they are part of the contract rather than log text.
const (
	NetworkFailureMessage  = "Network or API request failed while generating the response."
	InvalidResponseMessage = "Received an invalid response from the model."
	webFailureAnnotation   = "Web search data could not be processed."
)

// WebSearchSource labels answers augmented by the web fallback.
const WebSearchSource = "Google Search"

// insufficiencyMarkers are matched against lowercased, apostrophe-normalized
// model output to detect a self-reported lack of grounding.
var insufficiencyMarkers = []string{
	"i don't have enough medical information",
	"insufficient context",
	"not enough information",
}

// WebSearcher is the fallback context source consulted when the model
// reports insufficient grounding. Search returns "" on failure.
type WebSearcher interface {
	Search(ctx context.Context, query string, numResults int) string
}

// Generator turns a question plus retrieved context into a grounded answer.
// When a searcher is configured it performs at most one self-correction
// round: if the model says it lacks information, web results are appended
// to the prompt and the call is re-issued once.
type Generator struct {
	model    ai.ChatModel
	searcher WebSearcher
	logger   *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator) error

// WithSearcher enables the web fallback. A nil Generator searcher means
// self-correction is disabled and insufficient answers are returned as-is.
func WithSearcher(searcher WebSearcher) Option {
	return func(g *Generator) error {
		if searcher == nil {
			return fmt.Errorf("searcher cannot be nil")
		}
		g.searcher = searcher
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		g.logger = logger.With("component", "answer")
		return nil
	}
}

// NewGenerator creates a Generator backed by the given chat model.
func NewGenerator(model ai.ChatModel, opts ...Option) (*Generator, error) {
	if model == nil {
		return nil, ErrModelRequired
	}

	g := &Generator{
		model:  model,
		logger: slog.Default().With("component", "answer"),
	}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Generate produces an answer for query grounded in ragContext. It never
// returns an error: model failures map onto fixed degradation messages so
// the caller always has something to show. The returned sources are the
// input sources deduplicated, with WebSearchSource appended when the web
// fallback contributed to the final answer.
func (g *Generator) Generate(ctx context.Context, query, ragContext string, mode core.ResponseMode, sources []string) (string, []string) {
	userPrompt := buildUserPrompt(query, ragContext, mode, sources)

	text, err := g.model.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		g.logger.Error("chat completion failed", "error", err)
		if errors.Is(err, ai.ErrMalformedResponse) {
			return InvalidResponseMessage, dedupeSources(sources)
		}
		return NetworkFailureMessage, dedupeSources(sources)
	}
	result := strings.TrimSpace(text)

	if reportsInsufficiency(result) && g.searcher != nil {
		g.logger.Info("model reported insufficient context, trying web fallback", "query", query)
		webContext := g.searcher.Search(ctx, query, 0)
		if strings.TrimSpace(webContext) != "" {
			retryPrompt := userPrompt + "\n\n### Additional Web Search Results:\n" + webContext
			retryText, retryErr := g.model.Complete(ctx, systemPrompt, retryPrompt)
			if retryErr != nil {
				g.logger.Warn("web-augmented retry failed", "error", retryErr)
				result += "\n\n" + webFailureAnnotation
			} else {
				result = strings.TrimSpace(retryText)
				sources = append(sources, WebSearchSource)
			}
		}
	}

	return result, dedupeSources(sources)
}

// reportsInsufficiency checks whether the model declined to answer for
// lack of grounding. Matching is case-insensitive and tolerant of curly
// apostrophes, which chat models emit inconsistently.
func reportsInsufficiency(text string) bool {
	normalized := strings.ReplaceAll(strings.ToLower(text), "’", "'")
	for _, marker := range insufficiencyMarkers {
		if strings.Contains(normalized, marker) {
			return true
		}
	}
	return false
}

// dedupeSources removes duplicates keeping first-occurrence order.
func dedupeSources(sources []string) []string {
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
