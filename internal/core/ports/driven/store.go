package driven

import (
	"context"

	"github.com/refassist/refassist-cli/internal/core/domain"
)

// VectorStore owns the documents/chunks/embeddings relations. It is the only
// component permitted to mutate them; pipelines interact exclusively through
// these operations.
//
// Every operation returns domain.ErrConnection when invoked before the store
// is opened or after Close. Multi-statement mutations are atomic: a failure
// leaves the store in its pre-operation state.
type VectorStore interface {
	// ExistingHashes returns the content hashes of all stored documents.
	// Ingestion fetches this once per batch for the dedup fast path.
	ExistingHashes(ctx context.Context) (map[string]struct{}, error)

	// FindDocumentByPath returns the identifier of the document with the
	// given file path, or domain.ErrNotFound.
	FindDocumentByPath(ctx context.Context, path string) (int64, error)

	// UpsertDocument inserts a new document row or updates the existing row
	// for the same file path in place, preserving its identifier. The
	// document's hash must not already exist elsewhere in the store; the
	// ingestion pipeline checks before calling.
	UpsertDocument(ctx context.Context, doc *domain.Document) (int64, error)

	// ReplaceChunks atomically replaces a document's chunk set: the
	// document's embeddings and chunks are deleted and the new ordered
	// texts inserted with sequential indices starting at zero.
	ReplaceChunks(ctx context.Context, docID int64, texts []string) error

	// ChunksMissingEmbeddings returns every chunk without an embedding row,
	// in chunk-identifier order. Empty when the relations are in sync.
	ChunksMissingEmbeddings(ctx context.Context) ([]domain.ChunkText, error)

	// InsertEmbedding stores the vector for a chunk. Inserting for an
	// unknown chunk, or for a chunk that already has an embedding, returns
	// domain.ErrSchema.
	InsertEmbedding(ctx context.Context, chunkID int64, embedding []float32) error

	// TopSimilarChunks ranks all stored embeddings by similarity to the
	// query vector descending (ties by chunk ID ascending), truncates to k,
	// then filters to similarity >= threshold. Threshold filtering happens
	// strictly after truncation.
	TopSimilarChunks(ctx context.Context, query []float32, k int, threshold float64) ([]domain.ChunkMatch, error)

	// ResolveChunks joins chunks back to their owning documents.
	ResolveChunks(ctx context.Context, chunkIDs []int64) ([]domain.ChunkContext, error)

	// DocumentsByID fetches full documents.
	DocumentsByID(ctx context.Context, ids []int64) ([]domain.Document, error)

	// Close releases the connection. Safe to call more than once.
	Close() error
}
