// Package mcp provides an MCP (Model Context Protocol) server adapter. It
// lets AI assistants query the local documentation index over JSON-RPC.
package mcp

import "errors"

// ErrMissingRAGService is returned when the retrieval service is not provided.
var ErrMissingRAGService = errors.New("mcp: RAG service is required")
