package driving

import (
	"context"

	"github.com/refassist/refassist-cli/internal/core/domain"
)

// IngestReport summarises one ingestion run.
type IngestReport struct {
	// RunID identifies the run in logs.
	RunID string

	// Indexed is the number of newly created documents.
	Indexed int

	// Updated is the number of documents replaced in place.
	Updated int

	// Skipped is the number of documents deduplicated by content hash.
	Skipped int

	// Chunks is the total number of chunks written.
	Chunks int
}

// RAGService composes ingestion, embedding and retrieval behind the two
// operations external actors need.
type RAGService interface {
	// Initialize loads the documents at path, indexes them and fills in any
	// missing embeddings. It may be called repeatedly; unchanged documents
	// are skipped and changed ones replaced.
	Initialize(ctx context.Context, path string) (*IngestReport, error)

	// Query embeds the text and returns the ranked source documents whose
	// chunks matched. An empty result is a valid outcome, not an error.
	Query(ctx context.Context, text string) ([]domain.SourceDocument, error)

	// QueryOpts is Query with explicit top-k and similarity threshold.
	QueryOpts(ctx context.Context, text string, topK int, threshold float64) ([]domain.SourceDocument, error)

	// Defaults returns the configured top-k and similarity threshold, for
	// callers that let users override one knob but not the other.
	Defaults() (topK int, threshold float64)

	// Close releases the underlying store.
	Close() error
}
