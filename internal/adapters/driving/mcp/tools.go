package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/refassist/refassist-cli/internal/core/domain"
)

// QueryInput is the input schema for the query tool.
type QueryInput struct {
	Query     string  `json:"query" jsonschema:"the question to search the documentation index for"`
	TopK      int     `json:"top_k,omitempty" jsonschema:"maximum number of chunks to rank (default 5)"`
	Threshold float64 `json:"threshold,omitempty" jsonschema:"minimum similarity for a match (default 0.7)"`
}

// QueryOutput is the output schema for the query tool.
type QueryOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput is one matched source document.
type DocumentOutput struct {
	File    string        `json:"file"`
	Matches []MatchOutput `json:"matches"`
}

// MatchOutput is one matching chunk within a document.
type MatchOutput struct {
	Text       string  `json:"text"`
	Index      int     `json:"index"`
	Similarity float64 `json:"similarity"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query",
		Description: "Retrieve the documentation passages most similar to a query",
	}, s.handleQuery)
}

// handleQuery handles the query tool invocation.
func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	var (
		docs []domain.SourceDocument
		err  error
	)
	if input.TopK == 0 && input.Threshold == 0 {
		docs, err = s.ports.RAG.Query(ctx, input.Query)
	} else {
		// Fill whichever knob the caller left out with the configured
		// default rather than a zero value.
		topK, threshold := s.ports.RAG.Defaults()
		if input.TopK != 0 {
			topK = input.TopK
		}
		if input.Threshold != 0 {
			threshold = input.Threshold
		}
		docs, err = s.ports.RAG.QueryOpts(ctx, input.Query, topK, threshold)
	}
	if err != nil {
		return nil, QueryOutput{}, err
	}

	output := QueryOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}

	for i := range docs {
		out := DocumentOutput{
			File:    docs[i].Document.File,
			Matches: make([]MatchOutput, len(docs[i].Matches)),
		}
		for j, m := range docs[i].Matches {
			out.Matches[j] = MatchOutput{
				Text:       m.Text,
				Index:      m.Index,
				Similarity: m.Similarity,
			}
		}
		output.Documents[i] = out
	}

	return nil, output, nil
}
