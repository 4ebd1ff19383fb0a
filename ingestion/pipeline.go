package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"

	"github.com/mediqa/mediqa/ai"
	"github.com/mediqa/mediqa/core"
	"github.com/mediqa/mediqa/retrieval"
	"github.com/mediqa/mediqa/storage"
)

const (
	defaultBatchSize = 32
	defaultWorkers   = 4
)

// ProgressFunc reports ingestion progress. It may be called concurrently
// from worker goroutines; done is the total number of chunks stored so far.
type ProgressFunc func(done, total int)

// Pipeline embeds chunks in batches on a worker pool and stores the
// resulting composite records. Vectors are L2-normalized before storage so
// index distances are comparable across embedding backends.
type Pipeline struct {
	repo     storage.ChunkRepository
	embedder ai.Embedder
	logger   *slog.Logger

	batchSize int
	workers   int
	progress  ProgressFunc
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline) error

// WithBatchSize sets how many chunks each embedding request carries.
func WithBatchSize(n int) PipelineOption {
	return func(p *Pipeline) error {
		if n <= 0 {
			return fmt.Errorf("batch size must be positive, got %d", n)
		}
		p.batchSize = n
		return nil
	}
}

// WithWorkers sets the embedding concurrency.
func WithWorkers(n int) PipelineOption {
	return func(p *Pipeline) error {
		if n <= 0 {
			return fmt.Errorf("workers must be positive, got %d", n)
		}
		p.workers = n
		return nil
	}
}

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) PipelineOption {
	return func(p *Pipeline) error {
		if fn == nil {
			return fmt.Errorf("progress callback cannot be nil")
		}
		p.progress = fn
		return nil
	}
}

// WithPipelineLogger sets the logger.
func WithPipelineLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		p.logger = logger.With("component", "ingestion")
		return nil
	}
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(repo storage.ChunkRepository, embedder ai.Embedder, opts ...PipelineOption) (*Pipeline, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	p := &Pipeline{
		repo:      repo,
		embedder:  embedder,
		logger:    slog.Default().With("component", "ingestion"),
		batchSize: defaultBatchSize,
		workers:   defaultWorkers,
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Run embeds and stores all chunks. The first batch error wins; once an
// error occurs remaining batches are skipped and in-flight work drains
// before Run returns.
func (p *Pipeline) Run(ctx context.Context, chunks []*core.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	pool, err := ants.NewPool(p.workers)
	if err != nil {
		return fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		firstErr  error
		processed atomic.Int64
	)
	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
		}
	}
	failed := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return firstErr != nil
	}

	total := len(chunks)
	for start := 0; start < total; start += p.batchSize {
		end := min(start+p.batchSize, total)
		batch := chunks[start:end]

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if failed() || ctx.Err() != nil {
				return
			}
			if err := p.processBatch(ctx, batch); err != nil {
				fail(err)
				return
			}
			done := processed.Add(int64(len(batch)))
			if p.progress != nil {
				p.progress(int(done), total)
			}
		})
		if submitErr != nil {
			wg.Done()
			fail(fmt.Errorf("failed to submit batch: %w", submitErr))
			break
		}
	}
	wg.Wait()

	if firstErr == nil {
		firstErr = ctx.Err()
	}
	if firstErr != nil {
		return firstErr
	}

	p.logger.Info("ingestion complete", "chunks", total)
	return nil
}

func (p *Pipeline) processBatch(ctx context.Context, batch []*core.Chunk) error {
	texts := make([]string, len(batch))
	for i, chunk := range batch {
		texts[i] = chunk.Text
	}

	vectors, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed batch: %w", err)
	}
	if len(vectors) != len(batch) {
		return fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(batch))
	}

	for i, chunk := range batch {
		chunk.Vector = retrieval.Normalize(vectors[i])
	}
	if _, err := p.repo.AddChunks(ctx, batch...); err != nil {
		return fmt.Errorf("failed to store batch: %w", err)
	}
	return nil
}
