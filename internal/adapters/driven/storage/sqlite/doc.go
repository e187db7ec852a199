// Package sqlite implements the vector store on SQLite. Documents, chunks
// and embeddings live in three relations; similarity ranking runs inside the
// database through a registered inner-product scalar function, so retrieval
// is a single query rather than a scan in Go.
package sqlite
