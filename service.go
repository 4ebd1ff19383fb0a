// Copyright 2026 MediQA Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package mediqa

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mediqa/mediqa/ai"
	"github.com/mediqa/mediqa/ai/openai"
	"github.com/mediqa/mediqa/answer"
	"github.com/mediqa/mediqa/assistant"
	"github.com/mediqa/mediqa/config"
	"github.com/mediqa/mediqa/core"
	"github.com/mediqa/mediqa/ingestion"
	"github.com/mediqa/mediqa/retrieval"
	"github.com/mediqa/mediqa/storage"
	"github.com/mediqa/mediqa/storage/badger"
	"github.com/mediqa/mediqa/websearch"
)

// Service wires storage, AI backends, retrieval, and answering into one
// handle. The CLI builds a Service per invocation; a long-running caller
// keeps one and reloads the index after re-ingesting.
type Service struct {
	backend   *badger.Backend
	chunkRepo storage.ChunkRepository
	provider  ai.Provider
	index     *retrieval.Index
	assistant *assistant.Assistant
	cfg       *config.Config
	logger    *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	cfg    *config.Config
	logger *slog.Logger
}

// WithConfig supplies the application configuration.
// Default is config.DefaultConfig().
func WithConfig(cfg *config.Config) ServiceOption {
	return func(o *serviceOptions) {
		if cfg != nil {
			o.cfg = cfg
		}
	}
}

// WithServiceLogger sets the logger.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(o *serviceOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewService opens the chunk store at filePath and assembles the full
// answering stack: index, retriever, web fallback, generator, assistant.
// The index is built once from stored chunks; call ReloadIndex after
// ingestion to pick up new records.
func NewService(ctx context.Context, filePath string, opts ...ServiceOption) (*Service, error) {
	options := &serviceOptions{
		cfg:    config.DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	cfg := options.cfg
	logger := options.logger

	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	chunkRepo, err := badger.NewChunkRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(cfg.AI.EmbeddingHost),
		ai.WithChatHost(cfg.AI.ChatHost),
		ai.WithEmbeddingModel(cfg.AI.EmbeddingModel),
		ai.WithChatModel(cfg.AI.ChatModel),
		ai.WithAPIKey(cfg.APIKey()),
		ai.WithTemperature(cfg.AI.Temperature),
		ai.WithMaxTokens(cfg.AI.MaxTokens),
	)
	provider, err := openai.NewProvider(aiConfig)
	if err != nil {
		chunkRepo.Close()
		backend.Close()
		return nil, err
	}

	svc := &Service{
		backend:   backend,
		chunkRepo: chunkRepo,
		provider:  provider,
		cfg:       cfg,
		logger:    logger,
	}
	if err := svc.buildAssistant(ctx); err != nil {
		svc.Close()
		return nil, err
	}
	return svc, nil
}

// buildAssistant constructs the index-dependent half of the stack.
func (s *Service) buildAssistant(ctx context.Context) error {
	index, err := retrieval.BuildIndex(ctx, s.chunkRepo)
	if err != nil {
		return err
	}

	retriever, err := retrieval.NewRetriever(index, s.provider.Embedder(),
		retrieval.WithLogger(s.logger),
		retrieval.WithThresholds(s.cfg.Retrieval.MaxAvgDistance, s.cfg.Retrieval.KeywordAvgDistance))
	if err != nil {
		return err
	}

	searcher := s.newSearcher()

	generatorOpts := []answer.Option{answer.WithLogger(s.logger)}
	if searcher != nil {
		generatorOpts = append(generatorOpts, answer.WithSearcher(searcher))
	}
	generator, err := answer.NewGenerator(s.provider.ChatModel(), generatorOpts...)
	if err != nil {
		return err
	}

	assistantOpts := []assistant.Option{
		assistant.WithLogger(s.logger),
		assistant.WithTopK(s.cfg.Retrieval.TopK),
		assistant.WithMinContextWords(s.cfg.Retrieval.MinContextWords),
	}
	if searcher != nil {
		assistantOpts = append(assistantOpts, assistant.WithSearcher(searcher))
	}
	asst, err := assistant.New(retriever, generator, assistantOpts...)
	if err != nil {
		return err
	}

	s.index = index
	s.assistant = asst
	return nil
}

// newSearcher builds the web search client, or nil when the fallback is
// disabled or unconfigured. Missing credentials downgrade to local-only
// answering rather than failing startup.
func (s *Service) newSearcher() *websearch.Client {
	if !s.cfg.WebSearch.Enabled {
		return nil
	}
	apiKey, engineID := s.cfg.WebSearchCredentials()
	if apiKey == "" || engineID == "" {
		s.logger.Warn("web search enabled but credentials missing, running local-only")
		return nil
	}
	client, err := websearch.NewClient(apiKey, engineID,
		websearch.WithLogger(s.logger),
		websearch.WithNumResults(s.cfg.WebSearch.NumResults),
		websearch.WithHTTPClient(&http.Client{Timeout: s.cfg.WebSearchTimeout()}))
	if err != nil {
		s.logger.Warn("failed to build web search client, running local-only", "error", err)
		return nil
	}
	return client
}

// Answer runs one question-answering turn.
func (s *Service) Answer(ctx context.Context, query, reportText string, mode core.ResponseMode) *core.Answer {
	return s.assistant.Answer(ctx, query, reportText, mode)
}

// Insights summarizes themes across the given report text.
func (s *Service) Insights(ctx context.Context, reportText string) *core.Answer {
	return s.assistant.Insights(ctx, reportText)
}

// ChunkRepository exposes the underlying chunk store.
func (s *Service) ChunkRepository() storage.ChunkRepository {
	return s.chunkRepo
}

// IndexSize returns the number of chunks in the in-memory index.
func (s *Service) IndexSize() int {
	return s.index.Len()
}

// NewIngestionPipeline creates a pipeline writing into this service's store.
func (s *Service) NewIngestionPipeline(opts ...ingestion.PipelineOption) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(s.chunkRepo, s.provider.Embedder(), opts...)
}

// ReloadIndex rebuilds the in-memory index and the stack on top of it.
// Call after ingestion so new chunks become searchable.
func (s *Service) ReloadIndex(ctx context.Context) error {
	return s.buildAssistant(ctx)
}

// Close releases the AI provider and storage.
func (s *Service) Close() error {
	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}
	if err := s.chunkRepo.Close(); err != nil {
		s.logger.Error("error closing chunk repository", "err", err)
		return err
	}
	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
