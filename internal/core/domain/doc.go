// Package domain contains the core entities of the refassist index:
// documents, their chunks, chunk embeddings, and retrieval results.
// It has no dependencies on adapters or infrastructure.
package domain
