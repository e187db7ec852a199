package driven

// Chunker splits document text into overlapping windows, preserving order.
// Implementations are pure: the same input always yields the same ordered
// output, and empty text yields an empty slice.
type Chunker interface {
	Split(text string) []string
}
