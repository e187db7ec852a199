package domain

// ChunkMatch is a ranked similarity hit against a stored chunk embedding.
type ChunkMatch struct {
	// ChunkID is the matched chunk.
	ChunkID int64

	// Similarity is the inner-product score against the query embedding.
	// Higher means more semantically related.
	Similarity float64
}

// ChunkContext is a matched chunk joined back to its owning document.
type ChunkContext struct {
	ChunkID    int64
	Text       string
	Index      int
	DocumentID int64
	File       string

	// DocumentText is the full text of the owning document.
	DocumentText string

	// Similarity carries the match score when the context was produced by
	// a retrieval, zero otherwise.
	Similarity float64
}

// SourceDocument is a retrieval result: one source document together with
// the chunks of it that matched the query. A document appears once per
// query regardless of how many of its chunks matched.
type SourceDocument struct {
	Document Document

	// Matches are the document's matching chunks in descending similarity
	// order.
	Matches []ChunkContext
}

// Answer is the result of handing retrieved context to the answer client.
type Answer struct {
	// Text is the generated answer.
	Text string

	// Sources are the file paths of the documents used as context.
	Sources []string

	// CodeExamples are fenced code blocks extracted from the answer.
	CodeExamples []string
}
