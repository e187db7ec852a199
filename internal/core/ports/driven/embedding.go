package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// The service is stateless and reentrant; pipelines may call Embed from
// multiple goroutines. Embeddings from different models are never compared,
// so the query path must use the same provider instance as ingestion.
//
// Implementations may include:
//   - Ollama (nomic-embed-text, all-minilm)
//   - OpenAI-compatible APIs (text-embedding-3-small, ...)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text. Deterministic
	// for identical input within one provider instance. Failures are
	// wrapped in domain.ErrEmbedding.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 768, 1536).
	// Fixed at provider construction time.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
