package service

import (
	"fmt"
	"iter"
	"slices"

	"github.com/tieubaoca/pdfchat/types"
)

var DefaultDocumentServiceConfig = types.DocumentServiceConfig{
	MaxChunkSize: 10000,
	OverlapSize:  1000,
}

// boundaryLevels lists cut points from most to least preferred. Separators
// within one level compete on position only.
var boundaryLevels = [][]string{
	{"\n\n"},
	{"\n"},
	{". ", "? ", "! "},
	{" "},
}

// TextSplitter cuts text into overlapping windows measured in characters
// (runes). Every chunk after the first starts exactly OverlapSize characters
// before the end of the previous one.
type TextSplitter struct {
	maxChunkSize int
	overlapSize  int
}

func NewTextSplitter(config types.DocumentServiceConfig) (*TextSplitter, error) {
	if config.MaxChunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d: %w", config.MaxChunkSize, types.ErrInvalidInput)
	}
	if config.OverlapSize < 0 || config.OverlapSize >= config.MaxChunkSize {
		return nil, fmt.Errorf("overlap must be in [0, %d), got %d: %w", config.MaxChunkSize, config.OverlapSize, types.ErrInvalidInput)
	}
	return &TextSplitter{
		maxChunkSize: config.MaxChunkSize,
		overlapSize:  config.OverlapSize,
	}, nil
}

// Chunks returns a lazy sequence of chunks. The sequence can be ranged over
// any number of times and always yields the same chunks.
func (s *TextSplitter) Chunks(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		runes := []rune(text)
		start := 0
		for start < len(runes) {
			if start+s.maxChunkSize >= len(runes) {
				yield(string(runes[start:]))
				return
			}
			end := s.cutPoint(runes, start)
			if !yield(string(runes[start:end])) {
				return
			}
			start = end - s.overlapSize
		}
	}
}

// Split collects Chunks into a slice.
func (s *TextSplitter) Split(text string) []string {
	return slices.Collect(s.Chunks(text))
}

// cutPoint picks where the chunk starting at start ends. Boundaries are only
// looked for in the last overlapSize characters of the window, so every chunk
// but the last is longer than maxChunkSize-overlapSize. The cut always lies
// after start+overlapSize so the next start advances.
func (s *TextSplitter) cutPoint(runes []rune, start int) int {
	limit := start + s.maxChunkSize
	floor := max(start+s.overlapSize, limit-s.overlapSize)
	for _, level := range boundaryLevels {
		best := -1
		for _, sep := range level {
			if cut := lastCut(runes, floor, limit, []rune(sep)); cut > best {
				best = cut
			}
		}
		if best > floor {
			return best
		}
	}
	return limit
}

// lastCut returns the position just after the last occurrence of sep that
// ends within (floor, limit], or -1.
func lastCut(runes []rune, floor, limit int, sep []rune) int {
	for cut := limit; cut > floor; cut-- {
		i := cut - len(sep)
		if i < 0 {
			break
		}
		if slices.Equal(runes[i:cut], sep) {
			return cut
		}
	}
	return -1
}
