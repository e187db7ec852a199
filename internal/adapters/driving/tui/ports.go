// Package tui implements the interactive chat REPL over the documentation
// index.
package tui

import (
	"context"

	"github.com/refassist/refassist-cli/internal/core/domain"
)

// Assistant is the TUI-facing subset of the RAG service.
type Assistant interface {
	// Query returns ranked source documents for the text.
	Query(ctx context.Context, text string) ([]domain.SourceDocument, error)

	// Ask generates an answer from retrieved context.
	Ask(ctx context.Context, question string, wantCode bool) (*domain.Answer, error)
}
