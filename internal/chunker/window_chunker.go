package chunker

import (
	"fmt"

	"rapport/internal/domain"
)

// WindowChunker splits text into fixed-length character windows with overlap.
// Chunks are produced left to right; the split is deterministic for a given
// text and configuration, which keeps cached embeddings reproducible.
type WindowChunker struct {
	maxLength int
	overlap   int
}

// NewWindowChunker validates the window configuration. An overlap equal to
// or larger than the window length would make the sliding step zero or
// negative, so it is rejected rather than clamped.
func NewWindowChunker(maxLength, overlap int) (*WindowChunker, error) {
	if maxLength <= 0 {
		maxLength = 1500
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxLength {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than max length %d", domain.ErrInvalidInput, overlap, maxLength)
	}
	return &WindowChunker{maxLength: maxLength, overlap: overlap}, nil
}

// Chunk returns the overlapping windows of text. Empty text yields no
// chunks; text shorter than the window yields exactly one chunk equal to
// the whole text. Windows are measured in runes so multi-byte report text
// never splits inside a character.
func (c *WindowChunker) Chunk(text string) ([]string, error) {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil, nil
	}
	if len(runes) <= c.maxLength {
		return []string{text}, nil
	}
	step := c.maxLength - c.overlap
	chunks := make([]string, 0, len(runes)/step+1)
	for start := 0; start < len(runes); start += step {
		end := start + c.maxLength
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks, nil
}
