package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refassist/refassist-cli/internal/core/domain"
	"github.com/refassist/refassist-cli/internal/core/services"
)

func TestIngest_NewDocuments(t *testing.T) {
	store := newTestStore(t)
	loader := &stubLoader{docs: []domain.RawDocument{
		{Path: "a.md", Text: "alpha document body"},
		{Path: "b.md", Text: "bravo document body"},
	}}

	svc := services.NewIngestService(store, loader, newTestChunker())
	report, err := svc.Ingest(context.Background(), "docs/")
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 2, report.Indexed)
	assert.Zero(t, report.Updated)
	assert.Zero(t, report.Skipped)
	assert.Equal(t, 2, report.Chunks)

	pending, err := store.ChunksMissingEmbeddings(context.Background())
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestIngest_SkipsKnownContent(t *testing.T) {
	store := newTestStore(t)
	loader := &stubLoader{docs: []domain.RawDocument{
		{Path: "a.md", Text: "alpha document body"},
	}}
	svc := services.NewIngestService(store, loader, newTestChunker())
	ctx := context.Background()

	_, err := svc.Ingest(ctx, "docs/")
	require.NoError(t, err)

	// Second run with identical content touches nothing.
	report, err := svc.Ingest(ctx, "docs/")
	require.NoError(t, err)
	assert.Zero(t, report.Indexed)
	assert.Zero(t, report.Updated)
	assert.Equal(t, 1, report.Skipped)
	assert.Zero(t, report.Chunks)
}

func TestIngest_UpdatesChangedDocumentInPlace(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	loader := &stubLoader{docs: []domain.RawDocument{{Path: "a.md", Text: "version one"}}}
	svc := services.NewIngestService(store, loader, newTestChunker())
	_, err := svc.Ingest(ctx, "docs/")
	require.NoError(t, err)

	originalID, err := store.FindDocumentByPath(ctx, "a.md")
	require.NoError(t, err)

	loader.docs = []domain.RawDocument{{Path: "a.md", Text: "version two"}}
	report, err := svc.Ingest(ctx, "docs/")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated)
	assert.Zero(t, report.Indexed)

	// Same file path keeps its identifier across content changes.
	updatedID, err := store.FindDocumentByPath(ctx, "a.md")
	require.NoError(t, err)
	assert.Equal(t, originalID, updatedID)

	docs, err := store.DocumentsByID(ctx, []int64{updatedID})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "version two", docs[0].Text)
}

func TestIngest_DeduplicatesWithinBatch(t *testing.T) {
	store := newTestStore(t)
	loader := &stubLoader{docs: []domain.RawDocument{
		{Path: "a.md", Text: "identical content"},
		{Path: "copy-of-a.md", Text: "identical content"},
	}}

	svc := services.NewIngestService(store, loader, newTestChunker())
	report, err := svc.Ingest(context.Background(), "docs/")
	require.NoError(t, err)

	assert.Equal(t, 1, report.Indexed)
	assert.Equal(t, 1, report.Skipped)

	_, err = store.FindDocumentByPath(context.Background(), "copy-of-a.md")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIngest_EmptyBatch(t *testing.T) {
	store := newTestStore(t)
	svc := services.NewIngestService(store, &stubLoader{}, newTestChunker())

	_, err := svc.Ingest(context.Background(), "docs/")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIngest_CancelledBetweenDocuments(t *testing.T) {
	store := newTestStore(t)
	loader := &stubLoader{docs: []domain.RawDocument{
		{Path: "a.md", Text: "alpha"},
		{Path: "b.md", Text: "bravo"},
	}}
	svc := services.NewIngestService(store, loader, newTestChunker())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := svc.Ingest(ctx, "docs/")
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Zero(t, report.Indexed)
}
