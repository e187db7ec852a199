package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refassist/refassist-cli/internal/core/domain"
	"github.com/refassist/refassist-cli/internal/core/services"
)

func sourceDoc(file, text string) domain.SourceDocument {
	return domain.SourceDocument{Document: domain.Document{File: file, Text: text}}
}

func TestAnswer_BuildsContextAndSources(t *testing.T) {
	llm := &fakeLLM{reply: "Use the install command."}
	svc := services.NewAnswerService(llm)

	answer, err := svc.Answer(context.Background(), "how do I install?", []domain.SourceDocument{
		sourceDoc("install.md", "installation guide"),
		sourceDoc("faq.md", "frequently asked questions"),
	}, false)
	require.NoError(t, err)

	assert.Equal(t, "Use the install command.", answer.Text)
	assert.Equal(t, []string{"install.md", "faq.md"}, answer.Sources)
	assert.Empty(t, answer.CodeExamples)

	require.Len(t, llm.messages, 2)
	assert.Equal(t, "system", llm.messages[0].Role)
	assert.Contains(t, llm.messages[1].Content, "installation guide")
	assert.Contains(t, llm.messages[1].Content, "frequently asked questions")
	assert.Contains(t, llm.messages[1].Content, "how do I install?")
}

func TestAnswer_ExtractsCodeBlocks(t *testing.T) {
	reply := strings.Join([]string{
		"Run this:",
		"```go",
		`fmt.Println("hello")`,
		"```",
		"or this:",
		"```",
		"make install",
		"```",
	}, "\n")

	svc := services.NewAnswerService(&fakeLLM{reply: reply})
	answer, err := svc.Answer(context.Background(), "examples?", nil, false)
	require.NoError(t, err)

	require.Len(t, answer.CodeExamples, 2)
	assert.Equal(t, `fmt.Println("hello")`, answer.CodeExamples[0])
	assert.Equal(t, "make install", answer.CodeExamples[1])
}

func TestAnswer_UnterminatedFenceYieldsNoBlock(t *testing.T) {
	svc := services.NewAnswerService(&fakeLLM{reply: "```go\nunclosed"})
	answer, err := svc.Answer(context.Background(), "q", nil, false)
	require.NoError(t, err)
	assert.Empty(t, answer.CodeExamples)
}

func TestAnswer_WantCodeRephrasesQuestion(t *testing.T) {
	llm := &fakeLLM{reply: "ok"}
	svc := services.NewAnswerService(llm)

	_, err := svc.Answer(context.Background(), "the chunker", nil, true)
	require.NoError(t, err)
	assert.Contains(t, llm.messages[1].Content, "Please provide code examples for the chunker")
}

func TestAnswer_NoLLMConfigured(t *testing.T) {
	svc := services.NewAnswerService(nil)
	_, err := svc.Answer(context.Background(), "q", nil, false)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestAnswer_EmptyQuestion(t *testing.T) {
	svc := services.NewAnswerService(&fakeLLM{reply: "ok"})
	_, err := svc.Answer(context.Background(), "  ", nil, false)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
