package services

import (
	"context"
	"fmt"

	"github.com/refassist/refassist-cli/internal/core/domain"
	"github.com/refassist/refassist-cli/internal/core/ports/driven"
	"github.com/refassist/refassist-cli/internal/core/ports/driving"
)

// Ensure RAGService implements the interface.
var _ driving.RAGService = (*RAGService)(nil)

// RAGService composes the ingestion, embedding, retrieval and answer
// pipelines behind one facade. It owns the store and closes it.
type RAGService struct {
	store    driven.VectorStore
	embedder driven.EmbeddingService
	llm      driven.LLMService

	ingest *IngestService
	embed  *EmbedService
	query  *QueryService
	answer *AnswerService

	topK      int
	threshold float64
}

// RAGConfig wires the collaborators for a RAG service.
type RAGConfig struct {
	Store    driven.VectorStore
	Loader   driven.DocumentLoader
	Chunker  driven.Chunker
	Embedder driven.EmbeddingService

	// LLM is optional; without it Ask fails with domain.ErrLLMUnavailable.
	LLM driven.LLMService

	// TopK defaults to DefaultTopK when zero or negative.
	TopK int

	// Threshold is a pointer so an explicit 0.0 stays distinguishable from
	// unset; nil selects DefaultThreshold.
	Threshold *float64

	// EmbedWorkers caps embedding parallelism; zero means the default.
	EmbedWorkers int
}

// NewRAGService creates the facade.
func NewRAGService(cfg RAGConfig) *RAGService {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	threshold := DefaultThreshold
	if cfg.Threshold != nil {
		threshold = *cfg.Threshold
	}

	return &RAGService{
		store:     cfg.Store,
		embedder:  cfg.Embedder,
		llm:       cfg.LLM,
		ingest:    NewIngestService(cfg.Store, cfg.Loader, cfg.Chunker),
		embed:     NewEmbedService(cfg.Store, cfg.Embedder, cfg.EmbedWorkers),
		query:     NewQueryService(cfg.Store, cfg.Embedder),
		answer:    NewAnswerService(cfg.LLM),
		topK:      cfg.TopK,
		threshold: threshold,
	}
}

// Initialize loads the documents at path, indexes them and fills in any
// missing embeddings. Safe to call repeatedly; unchanged documents are
// skipped and changed ones replaced in place.
func (s *RAGService) Initialize(ctx context.Context, path string) (*driving.IngestReport, error) {
	report, err := s.ingest.Ingest(ctx, path)
	if err != nil {
		return report, err
	}

	if _, err := s.embed.FillMissing(ctx); err != nil {
		return report, fmt.Errorf("fill embeddings: %w", err)
	}

	return report, nil
}

// Query retrieves source documents with the configured defaults.
func (s *RAGService) Query(ctx context.Context, text string) ([]domain.SourceDocument, error) {
	return s.query.Retrieve(ctx, text, s.topK, s.threshold)
}

// QueryOpts retrieves source documents with explicit top-k and threshold.
func (s *RAGService) QueryOpts(ctx context.Context, text string, topK int, threshold float64) ([]domain.SourceDocument, error) {
	return s.query.Retrieve(ctx, text, topK, threshold)
}

// Ask retrieves context for the question and generates an answer from it.
func (s *RAGService) Ask(ctx context.Context, question string, wantCode bool) (*domain.Answer, error) {
	docs, err := s.Query(ctx, question)
	if err != nil {
		return nil, err
	}
	return s.answer.Answer(ctx, question, docs, wantCode)
}

// HasLLM reports whether an answer client is configured.
func (s *RAGService) HasLLM() bool {
	return s.llm != nil
}

// Defaults returns the configured top-k and similarity threshold.
func (s *RAGService) Defaults() (topK int, threshold float64) {
	return s.topK, s.threshold
}

// Embedder exposes the embedding provider for health checks.
func (s *RAGService) Embedder() driven.EmbeddingService {
	return s.embedder
}

// Close releases the underlying store and providers.
func (s *RAGService) Close() error {
	if s.embedder != nil {
		_ = s.embedder.Close()
	}
	if s.llm != nil {
		_ = s.llm.Close()
	}
	return s.store.Close()
}
