package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/pdfchat/types"
)

func newSplitter(t *testing.T, size, overlap int) *TextSplitter {
	t.Helper()
	s, err := NewTextSplitter(types.DocumentServiceConfig{MaxChunkSize: size, OverlapSize: overlap})
	require.NoError(t, err)
	return s
}

func TestNewTextSplitter_Invalid(t *testing.T) {
	tests := []types.DocumentServiceConfig{
		{MaxChunkSize: 0, OverlapSize: 0},
		{MaxChunkSize: 10, OverlapSize: -1},
		{MaxChunkSize: 10, OverlapSize: 10},
	}
	for _, cfg := range tests {
		t.Run(fmt.Sprintf("%d/%d", cfg.MaxChunkSize, cfg.OverlapSize), func(t *testing.T) {
			_, err := NewTextSplitter(cfg)
			assert.ErrorIs(t, err, types.ErrInvalidInput)
		})
	}
}

func TestTextSplitter_ChunkCount(t *testing.T) {
	s := newSplitter(t, DefaultDocumentServiceConfig.MaxChunkSize, DefaultDocumentServiceConfig.OverlapSize)

	tests := []struct {
		length int
		want   int
	}{
		{0, 0},
		{1, 1},
		{9999, 1},
		{10000, 1},
		{10001, 2},
		{19000, 2},
		{19001, 3},
		{25000, 3},
		{100000, 11},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("L=%d", tt.length), func(t *testing.T) {
			chunks := s.Split(strings.Repeat("a", tt.length))
			assert.Len(t, chunks, tt.want)
		})
	}
}

func TestTextSplitter_HardCutWindows(t *testing.T) {
	s := newSplitter(t, 10000, 1000)
	text := strings.Repeat("x", 25000)

	chunks := s.Split(text)
	require.Len(t, chunks, 3)
	assert.Equal(t, text[0:10000], chunks[0])
	assert.Equal(t, text[9000:19000], chunks[1])
	assert.Equal(t, text[18000:25000], chunks[2])
}

// windowCount is the chunk count of text with no boundaries at all.
func windowCount(length, size, overlap int) int {
	if length == 0 {
		return 0
	}
	if length <= size {
		return 1
	}
	step := size - overlap
	return 1 + (length-size+step-1)/step
}

func assertChunkShape(t *testing.T, chunks []string, length, size, overlap int) {
	t.Helper()
	assert.InDelta(t, windowCount(length, size, overlap), len(chunks), 1, "chunk count")
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		cur := []rune(chunks[i])
		require.GreaterOrEqual(t, len(cur), overlap)
		assert.Equal(t, string(prev[len(prev)-overlap:]), string(cur[:overlap]), "chunk %d", i)
		assert.LessOrEqual(t, len(prev), size)
		assert.Greater(t, len(prev), size-overlap, "chunk %d is too short", i-1)
	}
}

func TestTextSplitter_OverlapInvariant(t *testing.T) {
	const size, overlap = 10000, 1000
	s := newSplitter(t, size, overlap)

	var b strings.Builder
	for i := 0; b.Len() < 60000; i++ {
		fmt.Fprintf(&b, "Sentence number %d has some words in it. ", i)
		if i%17 == 0 {
			b.WriteString("\n\n")
		} else if i%5 == 0 {
			b.WriteString("\n")
		}
	}

	chunks := s.Split(b.String())
	require.Greater(t, len(chunks), 5)
	assertChunkShape(t, chunks, len([]rune(b.String())), size, overlap)
}

func TestTextSplitter_SparseParagraphs(t *testing.T) {
	const size, overlap = 10000, 1000
	s := newSplitter(t, size, overlap)

	// short lines, with a paragraph break roughly once per window
	var b strings.Builder
	for p := 0; p < 7; p++ {
		para := b.Len()
		for i := 0; b.Len()-para < 9500; i++ {
			fmt.Fprintf(&b, "Paragraph %d line %d keeps the story going a little further.\n", p, i)
		}
		b.WriteString("\n")
	}
	text := b.String()

	chunks := s.Split(text)
	assertChunkShape(t, chunks, len([]rune(text)), size, overlap)
}

func TestTextSplitter_PrefersBoundaries(t *testing.T) {
	t.Run("paragraph before word", func(t *testing.T) {
		s := newSplitter(t, 20, 5)
		text := strings.Repeat("a", 16) + "\n\nb b" + strings.Repeat("c", 20)

		chunks := s.Split(text)
		require.NotEmpty(t, chunks)
		assert.Equal(t, strings.Repeat("a", 16)+"\n\n", chunks[0])
	})

	t.Run("sentence before word", func(t *testing.T) {
		s := newSplitter(t, 20, 5)
		chunks := s.Split("aaaaaaaaaaaaa bb. c dddddddddddd")
		require.NotEmpty(t, chunks)
		assert.Equal(t, "aaaaaaaaaaaaa bb. ", chunks[0])
	})

	t.Run("word", func(t *testing.T) {
		s := newSplitter(t, 10, 2)
		chunks := s.Split("abcdefgh ijklmnop")
		require.NotEmpty(t, chunks)
		assert.Equal(t, "abcdefgh ", chunks[0])
	})

	t.Run("boundary inside overlap is ignored", func(t *testing.T) {
		s := newSplitter(t, 10, 5)
		text := "ab " + strings.Repeat("c", 20)
		chunks := s.Split(text)
		require.NotEmpty(t, chunks)
		assert.Equal(t, text[:10], chunks[0])
	})

	t.Run("early paragraph does not shorten the chunk", func(t *testing.T) {
		s := newSplitter(t, 20, 5)
		text := strings.Repeat("a", 8) + "\n\n" + strings.Repeat("b", 30)
		chunks := s.Split(text)
		require.NotEmpty(t, chunks)
		assert.Equal(t, text[:20], chunks[0])
	})
}

func TestTextSplitter_CountsCharactersNotBytes(t *testing.T) {
	s := newSplitter(t, 10, 2)
	chunks := s.Split(strings.Repeat("é", 15))
	require.Len(t, chunks, 2)
	assert.Equal(t, 10, len([]rune(chunks[0])))
	assert.Equal(t, 7, len([]rune(chunks[1])))
}

func TestTextSplitter_Restartable(t *testing.T) {
	s := newSplitter(t, 10, 2)
	seq := s.Chunks(strings.Repeat("z", 40))

	var first, second []string
	for c := range seq {
		first = append(first, c)
	}
	for c := range seq {
		second = append(second, c)
	}
	assert.Equal(t, first, second)

	// stopping early is allowed
	n := 0
	for range seq {
		n++
		break
	}
	assert.Equal(t, 1, n)
}
