package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/refassist/refassist-cli/internal/adapters/driven/storage/sqlite"
	"github.com/refassist/refassist-cli/internal/chunker"
	"github.com/refassist/refassist-cli/internal/core/domain"
	"github.com/refassist/refassist-cli/internal/core/ports/driven"
)

// stubLoader serves an in-memory document batch.
type stubLoader struct {
	docs []domain.RawDocument
	err  error
}

func (l *stubLoader) Load(_ context.Context, _ string) ([]domain.RawDocument, error) {
	return l.docs, l.err
}

// fakeEmbedder returns canned vectors keyed by exact text. Texts without an
// entry get the fallback vector; a nil fallback makes them fail.
type fakeEmbedder struct {
	mu       sync.Mutex
	vectors  map[string][]float32
	fallback []float32
	calls    int
}

func (e *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	if v, ok := e.vectors[text]; ok {
		return v, nil
	}
	if e.fallback == nil {
		return nil, fmt.Errorf("%w: no vector for %q", domain.ErrEmbedding, text)
	}
	return e.fallback, nil
}

func (e *fakeEmbedder) Dimensions() int            { return 3 }
func (e *fakeEmbedder) ModelName() string          { return "fake-embed" }
func (e *fakeEmbedder) Ping(context.Context) error { return nil }
func (e *fakeEmbedder) Close() error               { return nil }

// fakeLLM echoes a canned reply and records the messages it saw.
type fakeLLM struct {
	reply    string
	err      error
	messages []driven.ChatMessage
}

func (l *fakeLLM) Chat(_ context.Context, messages []driven.ChatMessage) (string, error) {
	l.messages = messages
	return l.reply, l.err
}

func (l *fakeLLM) ModelName() string { return "fake-llm" }
func (l *fakeLLM) Close() error      { return nil }

// newTestStore opens an ephemeral store and closes it with the test.
func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// newTestChunker uses small windows so short fixtures split predictably.
func newTestChunker() driven.Chunker {
	return chunker.New(chunker.WithChunkSize(64), chunker.WithOverlap(8))
}

var _ driven.DocumentLoader = (*stubLoader)(nil)
var _ driven.EmbeddingService = (*fakeEmbedder)(nil)
var _ driven.LLMService = (*fakeLLM)(nil)
