package driven

import (
	"context"

	"github.com/refassist/refassist-cli/internal/core/domain"
)

// DocumentLoader supplies raw documents to the ingestion pipeline. The core
// makes no filesystem calls itself; all loading happens behind this port.
type DocumentLoader interface {
	// Load reads the file or directory at path and returns the documents
	// found there, in a stable order.
	Load(ctx context.Context, path string) ([]domain.RawDocument, error)
}
