package services

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	"github.com/refassist/refassist-cli/internal/core/ports/driven"
	"github.com/refassist/refassist-cli/internal/logger"
)

// Default embedding pipeline settings.
const (
	DefaultEmbedWorkers = 4
	DefaultEmbedRate    = rate.Limit(20) // requests per second
)

// EmbedService fills in embeddings for chunks that lack one. It never
// re-embeds: the store's gap query is the whole work list, so a failed or
// cancelled run resumes exactly where it stopped.
type EmbedService struct {
	store    driven.VectorStore
	embedder driven.EmbeddingService
	workers  int
	limiter  *rate.Limiter
}

// NewEmbedService creates an embedding pipeline. workers <= 0 selects the
// default parallelism.
func NewEmbedService(store driven.VectorStore, embedder driven.EmbeddingService, workers int) *EmbedService {
	if workers <= 0 {
		workers = DefaultEmbedWorkers
	}
	return &EmbedService{
		store:    store,
		embedder: embedder,
		workers:  workers,
		limiter:  rate.NewLimiter(DefaultEmbedRate, 1),
	}
}

// FillMissing embeds every chunk the gap query reports and returns how many
// embeddings were written. The chunk is the unit of work: a failure or
// cancellation loses at most the chunks in flight, and whatever was written
// stays written.
func (s *EmbedService) FillMissing(ctx context.Context) (int, error) {
	pending, err := s.store.ChunksMissingEmbeddings(ctx)
	if err != nil {
		return 0, fmt.Errorf("find unembedded chunks: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	logger.Info("Embedding %d chunks with %s", len(pending), s.embedder.ModelName())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		done     int
	)

	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		mu.Unlock()
	}

	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				ct := pending[i]

				if err := s.limiter.Wait(ctx); err != nil {
					fail(err)
					return
				}

				vec, err := s.embedder.Embed(ctx, ct.Text)
				if err != nil {
					fail(fmt.Errorf("embed chunk %d: %w", ct.ChunkID, err))
					return
				}
				if err := s.store.InsertEmbedding(ctx, ct.ChunkID, vec); err != nil {
					fail(fmt.Errorf("store embedding for chunk %d: %w", ct.ChunkID, err))
					return
				}

				mu.Lock()
				done++
				mu.Unlock()
			}
		}()
	}

	for i := range pending {
		select {
		case jobs <- i:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if firstErr != nil {
		logger.Warn("Embedding stopped after %d of %d chunks: %v", done, len(pending), firstErr)
		return done, firstErr
	}
	if err := ctx.Err(); err != nil {
		return done, err
	}

	logger.Info("Embedded %d chunks", done)
	return done, nil
}
