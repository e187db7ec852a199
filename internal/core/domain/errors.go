package domain

import "errors"

// Domain errors represent the failure classes of the index. Infrastructure
// adapters wrap these so callers can classify failures with errors.Is.
var (
	// ErrConnection indicates the store is unreachable, or was used before
	// Open or after Close. Fatal to the calling operation, not the process.
	ErrConnection = errors.New("store connection unavailable")

	// ErrSchema indicates an invariant violation such as inserting a
	// duplicate embedding or referencing an unknown chunk. It points at a
	// caller bug and is surfaced, never swallowed.
	ErrSchema = errors.New("schema invariant violated")

	// ErrEmbedding indicates the embedding provider failed. There is no
	// automatic retry; re-running the pipeline resumes from the gap.
	ErrEmbedding = errors.New("embedding failed")

	// ErrInvalidInput indicates malformed input such as an empty document
	// batch.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrLLMUnavailable indicates the answer client is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")
)
