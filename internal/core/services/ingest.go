package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/refassist/refassist-cli/internal/core/domain"
	"github.com/refassist/refassist-cli/internal/core/ports/driven"
	"github.com/refassist/refassist-cli/internal/core/ports/driving"
	"github.com/refassist/refassist-cli/internal/logger"
)

// IngestService indexes raw documents into the store. Indexing and embedding
// are separate phases: this service writes documents and chunks only, and
// the embedding pipeline later fills whatever vectors are missing.
type IngestService struct {
	store   driven.VectorStore
	loader  driven.DocumentLoader
	chunker driven.Chunker
}

// NewIngestService creates an ingestion service.
func NewIngestService(store driven.VectorStore, loader driven.DocumentLoader, chunker driven.Chunker) *IngestService {
	return &IngestService{
		store:   store,
		loader:  loader,
		chunker: chunker,
	}
}

// Ingest loads the documents at path and indexes them. Documents whose
// content is already stored are skipped; documents whose file path is known
// but whose content changed are replaced in place. Cancellation applies
// between documents, never mid-document, so every document is either fully
// indexed or untouched.
func (s *IngestService) Ingest(ctx context.Context, path string) (*driving.IngestReport, error) {
	docs, err := s.loader.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: empty document batch", domain.ErrInvalidInput)
	}

	// One hash snapshot per batch; duplicates inside the batch are caught
	// by the seen set.
	hashes, err := s.store.ExistingHashes(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch existing hashes: %w", err)
	}
	seen := make(map[string]struct{}, len(docs))

	report := &driving.IngestReport{RunID: uuid.NewString()}
	logger.Info("Ingestion run %s: %d documents from %s", report.RunID, len(docs), path)

	for _, raw := range docs {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		hash := domain.HashText(raw.Text)
		if _, dup := hashes[hash]; dup {
			logger.Debug("Skipping %s: content already indexed", raw.Path)
			report.Skipped++
			continue
		}
		if _, dup := seen[hash]; dup {
			logger.Debug("Skipping %s: duplicate within batch", raw.Path)
			report.Skipped++
			continue
		}

		updated, chunks, err := s.ingestOne(ctx, raw, hash)
		if err != nil {
			return report, fmt.Errorf("index %s: %w", raw.Path, err)
		}

		seen[hash] = struct{}{}
		report.Chunks += chunks
		if updated {
			report.Updated++
		} else {
			report.Indexed++
		}
	}

	logger.Info("Ingestion run %s complete: %d indexed, %d updated, %d skipped, %d chunks",
		report.RunID, report.Indexed, report.Updated, report.Skipped, report.Chunks)

	return report, nil
}

// ingestOne indexes a single document and reports whether it replaced an
// existing row.
func (s *IngestService) ingestOne(ctx context.Context, raw domain.RawDocument, hash string) (updated bool, chunks int, err error) {
	_, err = s.store.FindDocumentByPath(ctx, raw.Path)
	switch {
	case err == nil:
		updated = true
	case errors.Is(err, domain.ErrNotFound):
		updated = false
	default:
		return false, 0, fmt.Errorf("find document: %w", err)
	}

	doc := &domain.Document{
		File:        raw.Path,
		Text:        raw.Text,
		ContentHash: hash,
		Modified:    raw.Modified,
	}
	docID, err := s.store.UpsertDocument(ctx, doc)
	if err != nil {
		return false, 0, err
	}

	texts := s.chunker.Split(raw.Text)
	if err := s.store.ReplaceChunks(ctx, docID, texts); err != nil {
		return false, 0, err
	}

	logger.Debug("Indexed %s: document %d, %d chunks", raw.Path, docID, len(texts))
	return updated, len(texts), nil
}
