package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/refassist/refassist-cli/internal/core/domain"
	"github.com/refassist/refassist-cli/internal/core/ports/driven"
	"github.com/refassist/refassist-cli/internal/logger"
)

// Default retrieval settings.
const (
	DefaultTopK      = 5
	DefaultThreshold = 0.7
)

// QueryService runs similarity retrieval: embed the query, rank stored
// chunks, join the survivors back to their documents.
type QueryService struct {
	store    driven.VectorStore
	embedder driven.EmbeddingService
}

// NewQueryService creates a retrieval service.
func NewQueryService(store driven.VectorStore, embedder driven.EmbeddingService) *QueryService {
	return &QueryService{
		store:    store,
		embedder: embedder,
	}
}

// Retrieve returns the source documents whose chunks ranked in the top k
// above the threshold, ordered by their best match. A document appears once
// no matter how many of its chunks matched. Empty results are a valid
// outcome.
func (s *QueryService) Retrieve(ctx context.Context, text string, topK int, threshold float64) ([]domain.SourceDocument, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	queryVec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches, err := s.store.TopSimilarChunks(ctx, queryVec, topK, threshold)
	if err != nil {
		return nil, fmt.Errorf("rank chunks: %w", err)
	}
	if len(matches) == 0 {
		logger.Debug("Query matched no chunks at threshold %.2f", threshold)
		return nil, nil
	}

	chunkIDs := make([]int64, len(matches))
	similarity := make(map[int64]float64, len(matches))
	for i, m := range matches {
		chunkIDs[i] = m.ChunkID
		similarity[m.ChunkID] = m.Similarity
	}

	// ResolveChunks preserves match order, so grouping by first appearance
	// orders documents by their best-ranked chunk.
	contexts, err := s.store.ResolveChunks(ctx, chunkIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve chunks: %w", err)
	}

	var docOrder []int64
	grouped := make(map[int64][]domain.ChunkContext)
	for _, cc := range contexts {
		cc.Similarity = similarity[cc.ChunkID]
		if _, ok := grouped[cc.DocumentID]; !ok {
			docOrder = append(docOrder, cc.DocumentID)
		}
		grouped[cc.DocumentID] = append(grouped[cc.DocumentID], cc)
	}

	docs, err := s.store.DocumentsByID(ctx, docOrder)
	if err != nil {
		return nil, fmt.Errorf("fetch documents: %w", err)
	}

	results := make([]domain.SourceDocument, 0, len(docs))
	for _, doc := range docs {
		results = append(results, domain.SourceDocument{
			Document: doc,
			Matches:  grouped[doc.ID],
		})
	}

	logger.Debug("Query matched %d chunks across %d documents", len(matches), len(results))
	return results, nil
}
