package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Document represents an indexed source document.
// The identifier is assigned by the store on first ingestion and is stable
// across content updates to the same file path.
type Document struct {
	// ID is the store-assigned identifier.
	ID int64

	// File is the source file path the document was loaded from.
	File string

	// Text is the full document text.
	Text string

	// ContentHash is the SHA-256 hex digest of Text. It is unique across
	// all documents and drives content-level deduplication.
	ContentHash string

	// Modified is the externally supplied last-modified time, if known.
	Modified *time.Time
}

// Chunk is a contiguous text window derived from one document. Chunks are
// the unit that gets embedded and ranked.
type Chunk struct {
	// ID is the store-assigned identifier. Chunk IDs are never reused.
	ID int64

	// DocumentID links to the owning Document.
	DocumentID int64

	// Text is the chunk's text content.
	Text string

	// Index is the zero-based position within the document.
	Index int
}

// RawDocument is a document as supplied by a loader, before it has been
// assigned an identifier or hashed.
type RawDocument struct {
	// Path is the source file path.
	Path string

	// Text is the full document text.
	Text string

	// Modified is the file's last-modified time, if known.
	Modified *time.Time
}

// ChunkText pairs a chunk identifier with its text. It is the shape the
// embedding pipeline works on.
type ChunkText struct {
	ChunkID int64
	Text    string
}

// HashText computes the content hash used for document deduplication.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
