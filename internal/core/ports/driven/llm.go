package driven

import "context"

// ChatMessage is a single turn in a chat completion request.
type ChatMessage struct {
	Role    string
	Content string
}

// LLMService answers questions given retrieved document context. It is an
// optional collaborator - when nil, the ask command is disabled while
// indexing and retrieval keep working.
type LLMService interface {
	// Chat runs a chat completion over the given messages and returns the
	// assistant's reply.
	Chat(ctx context.Context, messages []ChatMessage) (string, error)

	// ModelName returns the chat model in use.
	ModelName() string

	// Close releases resources.
	Close() error
}
