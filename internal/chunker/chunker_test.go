package chunker

import (
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		s := New()
		if s.chunkSize != DefaultChunkSize {
			t.Errorf("expected chunkSize %d, got %d", DefaultChunkSize, s.chunkSize)
		}
		if s.overlap != DefaultOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultOverlap, s.overlap)
		}
		if s.separator != DefaultSeparator {
			t.Errorf("expected separator %q, got %q", DefaultSeparator, s.separator)
		}
	})

	t.Run("custom sizes", func(t *testing.T) {
		s := New(WithChunkSize(500), WithOverlap(100))
		if s.chunkSize != 500 {
			t.Errorf("expected chunkSize 500, got %d", s.chunkSize)
		}
		if s.overlap != 100 {
			t.Errorf("expected overlap 100, got %d", s.overlap)
		}
	})

	t.Run("overlap exceeds chunk size", func(t *testing.T) {
		s := New(WithChunkSize(100), WithOverlap(150))
		if s.overlap >= s.chunkSize {
			t.Error("overlap should be reduced when it exceeds chunk size")
		}
	})

	t.Run("zero values ignored", func(t *testing.T) {
		s := New(WithChunkSize(0), WithOverlap(-1))
		if s.chunkSize != DefaultChunkSize {
			t.Errorf("expected default chunkSize, got %d", s.chunkSize)
		}
		if s.overlap != DefaultOverlap {
			t.Errorf("expected default overlap, got %d", s.overlap)
		}
	})
}

func TestSplit_Empty(t *testing.T) {
	s := New()
	if got := s.Split(""); got != nil {
		t.Errorf("expected nil for empty text, got %v", got)
	}
	if got := s.Split("   \n\n  "); got != nil {
		t.Errorf("expected nil for whitespace text, got %v", got)
	}
}

func TestSplit_SmallText(t *testing.T) {
	s := New(WithChunkSize(100), WithOverlap(20))
	chunks := s.Split("a short document")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "a short document" {
		t.Errorf("unexpected chunk: %q", chunks[0])
	}
}

func TestSplit_Deterministic(t *testing.T) {
	s := New(WithChunkSize(50), WithOverlap(10))
	text := strings.Repeat("the quick brown fox jumps over the lazy dog ", 20)

	first := s.Split(text)
	second := s.Split(text)

	if len(first) != len(second) {
		t.Fatalf("non-deterministic split: %d vs %d chunks", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

func TestSplit_PreservesWordOrder(t *testing.T) {
	s := New(WithChunkSize(40), WithOverlap(8))
	text := "alpha bravo charlie delta echo foxtrot golf hotel india juliet kilo lima mike november"

	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	// Every chunk's words must appear in the source in the same order,
	// and consecutive chunks must overlap: dropping each chunk's shared
	// prefix and concatenating rebuilds the source word sequence.
	sourceWords := strings.Fields(text)
	var rebuilt []string
	for _, c := range chunks {
		words := strings.Fields(c)
		shared := overlapLen(rebuilt, words)
		rebuilt = append(rebuilt, words[shared:]...)
	}

	if strings.Join(rebuilt, " ") != strings.Join(sourceWords, " ") {
		t.Errorf("reconstruction mismatch:\n got %q\nwant %q",
			strings.Join(rebuilt, " "), strings.Join(sourceWords, " "))
	}
}

// overlapLen returns the length of the longest suffix of prev that is a
// prefix of next.
func overlapLen(prev, next []string) int {
	maxLen := len(prev)
	if len(next) < maxLen {
		maxLen = len(next)
	}
	for n := maxLen; n > 0; n-- {
		match := true
		for i := 0; i < n; i++ {
			if prev[len(prev)-n+i] != next[i] {
				match = false
				break
			}
		}
		if match {
			return n
		}
	}
	return 0
}

func TestSplit_WindowSizeRespected(t *testing.T) {
	s := New(WithChunkSize(60), WithOverlap(12))
	text := strings.Repeat("word ", 100)

	for i, c := range s.Split(text) {
		// A window may exceed the budget only by the length of a single
		// word (words are never broken).
		if len(c) > 60+len("word") {
			t.Errorf("chunk %d too long: %d chars", i, len(c))
		}
	}
}

func TestSplit_ParagraphBoundaryPreferred(t *testing.T) {
	s := New(WithChunkSize(40), WithOverlap(10))
	text := "first paragraph ends right about here\n\nsecond paragraph carries on with more words than fit"

	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	if !strings.HasSuffix(chunks[0], "here") {
		t.Errorf("expected first chunk to close at the paragraph boundary, got %q", chunks[0])
	}
}
