package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/refassist/refassist-cli/internal/core/domain"
	"github.com/refassist/refassist-cli/internal/core/ports/driven"
)

// systemPrompt frames the assistant for documentation questions.
const systemPrompt = "You are a technical documentation assistant. " +
	"Provide clear, accurate responses based on the provided documentation context. " +
	"Include relevant code examples when appropriate."

// AnswerService turns retrieved documents plus a question into a generated
// answer with source attribution.
type AnswerService struct {
	llm driven.LLMService
}

// NewAnswerService creates an answer service. llm may be nil, in which case
// Answer fails with domain.ErrLLMUnavailable.
func NewAnswerService(llm driven.LLMService) *AnswerService {
	return &AnswerService{llm: llm}
}

// Answer asks the LLM the question against the given documents' full text.
// When wantCode is set the question is rephrased to request code examples.
func (s *AnswerService) Answer(ctx context.Context, question string, docs []domain.SourceDocument, wantCode bool) (*domain.Answer, error) {
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}

	if wantCode {
		question = "Please provide code examples for " + question
	}

	texts := make([]string, 0, len(docs))
	sources := make([]string, 0, len(docs))
	for _, doc := range docs {
		texts = append(texts, doc.Document.Text)
		sources = append(sources, doc.Document.File)
	}
	messages := []driven.ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: fmt.Sprintf("Context: %s\n\nQuestion: %s", strings.Join(texts, "\n\n"), question)},
	}

	reply, err := s.llm.Chat(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	return &domain.Answer{
		Text:         reply,
		Sources:      sources,
		CodeExamples: extractCodeBlocks(reply),
	}, nil
}

// extractCodeBlocks pulls the contents of fenced code blocks out of text.
// An unterminated fence yields no block.
func extractCodeBlocks(text string) []string {
	var blocks []string
	var current []string
	inBlock := false

	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "```") {
			if inBlock {
				if len(current) > 0 {
					blocks = append(blocks, strings.Join(current, "\n"))
					current = nil
				}
				inBlock = false
			} else {
				inBlock = true
			}
			continue
		}
		if inBlock {
			current = append(current, line)
		}
	}

	return blocks
}
