// Package chunker provides a word-boundary text splitting processor.
package chunker

import (
	"strings"
)

// DefaultChunkSize is the default window size in characters.
const DefaultChunkSize = 1024

// DefaultOverlap is the default number of characters shared between
// consecutive windows.
const DefaultOverlap = 200

// DefaultSeparator is the default word separator.
const DefaultSeparator = " "

// DefaultParagraphSeparator is the default paragraph boundary marker.
const DefaultParagraphSeparator = "\n\n"

// Splitter splits document text into overlapping word-aligned windows.
// Windows never break a word; a paragraph boundary near the end of a window
// closes it early so chunks tend to align with paragraphs.
type Splitter struct {
	chunkSize    int
	overlap      int
	separator    string
	paragraphSep string
}

// Option configures a Splitter.
type Option func(*Splitter)

// WithChunkSize sets the window size in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between windows in characters.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// WithSeparator sets the word separator.
func WithSeparator(sep string) Option {
	return func(s *Splitter) {
		if sep != "" {
			s.separator = sep
		}
	}
}

// WithParagraphSeparator sets the paragraph boundary marker.
func WithParagraphSeparator(sep string) Option {
	return func(s *Splitter) {
		if sep != "" {
			s.paragraphSep = sep
		}
	}
}

// New creates a Splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize:    DefaultChunkSize,
		overlap:      DefaultOverlap,
		separator:    DefaultSeparator,
		paragraphSep: DefaultParagraphSeparator,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Overlap must leave room for the window to advance.
	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}

	return s
}

// word is a token with a flag marking the end of a paragraph.
type word struct {
	text     string
	endsPara bool
}

// Split splits text into ordered overlapping windows. The same input always
// yields the same output; empty or whitespace-only text yields nil.
func (s *Splitter) Split(text string) []string {
	words := s.tokenize(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	start := 0

	for start < len(words) {
		end, _ := s.fill(words, start)

		parts := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			parts = append(parts, words[i].text)
		}
		chunks = append(chunks, strings.Join(parts, s.separator))

		if end >= len(words) {
			break
		}

		next := s.stepBack(words, end)
		// Guarantee forward progress even with degenerate sizes.
		if next <= start {
			next = start + 1
		}
		start = next
	}

	return chunks
}

// tokenize splits text into words, marking the last word of each paragraph.
func (s *Splitter) tokenize(text string) []word {
	var words []word
	for _, para := range strings.Split(text, s.paragraphSep) {
		fields := strings.Fields(para)
		for i, f := range fields {
			words = append(words, word{
				text:     f,
				endsPara: i == len(fields)-1,
			})
		}
	}
	return words
}

// fill greedily extends a window from start until chunkSize is reached,
// closing early at a paragraph boundary once the window is within one
// overlap of full.
func (s *Splitter) fill(words []word, start int) (end, length int) {
	softLimit := s.chunkSize - s.overlap
	if softLimit <= 0 {
		softLimit = s.chunkSize
	}

	end = start
	for end < len(words) {
		wordLen := len(words[end].text)
		if end > start {
			wordLen += len(s.separator)
		}
		if length+wordLen > s.chunkSize && end > start {
			return end, length
		}
		length += wordLen
		end++

		// Soft preference: a paragraph end inside the tail closes the
		// window at the boundary.
		if words[end-1].endsPara && length >= softLimit {
			return end, length
		}
	}
	return end, length
}

// stepBack walks back from a window end until the overlap budget is spent,
// returning the start index of the next window.
func (s *Splitter) stepBack(words []word, end int) int {
	budget := s.overlap
	next := end
	for next > 0 {
		wordLen := len(words[next-1].text)
		if next < end {
			wordLen += len(s.separator)
		}
		if budget-wordLen < 0 {
			break
		}
		budget -= wordLen
		next--
	}
	return next
}
