package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/pdfchat/database"
	"github.com/tieubaoca/pdfchat/mock"
	"github.com/tieubaoca/pdfchat/types"
)

func newTestVectorIndex(t *testing.T) *database.BadgerIndex {
	t.Helper()
	idx := database.NewBadgerIndex(filepath.Join(t.TempDir(), "vector_index"), nil)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func numbered(n int) []string {
	chunks := make([]string, n)
	for i := range chunks {
		chunks[i] = fmt.Sprintf("chunk number %d", i)
	}
	return chunks
}

func TestIndexService_EmptyInputFails(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	s := NewIndexService(newTestVectorIndex(t), embedder)

	_, err := s.Build(context.Background(), nil)
	assert.ErrorIs(t, err, types.ErrIndexMissing)
	assert.Zero(t, embedder.DocumentCalls())

	_, err = s.Current(context.Background())
	assert.ErrorIs(t, err, types.ErrIndexMissing)
}

func TestIndexService_BuildBatches(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	s := NewIndexService(newTestVectorIndex(t), embedder)

	info, err := s.Build(context.Background(), numbered(250))
	require.NoError(t, err)
	assert.Equal(t, 250, info.Chunks)
	assert.Equal(t, mock.DefaultModel, info.Model)
	assert.Equal(t, mock.DefaultDimension, info.Dimension)
	assert.Equal(t, 3, embedder.DocumentCalls())

	current, err := s.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, info.BuildID, current.BuildID)
}

func TestIndexService_EmbeddingErrorKeepsPreviousIndex(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	s := NewIndexService(newTestVectorIndex(t), embedder)

	first, err := s.Build(context.Background(), numbered(3))
	require.NoError(t, err)

	cause := errors.New("provider down")
	embedder.EmbedDocumentsFunc = func(context.Context, []string) ([][]float32, error) {
		return nil, cause
	}
	_, err = s.Build(context.Background(), numbered(5))
	assert.ErrorIs(t, err, cause)

	current, err := s.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.BuildID, current.BuildID)
}

func TestIndexService_MissingVectors(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedDocumentsFunc = func(_ context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1, 2}}, nil
	}
	s := NewIndexService(newTestVectorIndex(t), embedder)

	_, err := s.Build(context.Background(), numbered(2))
	assert.ErrorIs(t, err, types.ErrProviderFailure)
}

func TestRetriever(t *testing.T) {
	ctx := context.Background()
	idx := newTestVectorIndex(t)
	embedder := mock.NewMockEmbedder()
	chunks := numbered(3)

	info, err := NewIndexService(idx, embedder).Build(ctx, chunks)
	require.NoError(t, err)

	t.Run("nil handle", func(t *testing.T) {
		r := NewRetriever(idx, embedder, 4)
		before := embedder.QueryCalls()
		_, err := r.Retrieve(ctx, nil, "anything")
		assert.ErrorIs(t, err, types.ErrIndexMissing)
		assert.Equal(t, before, embedder.QueryCalls())
	})

	t.Run("never more than the index holds", func(t *testing.T) {
		r := NewRetriever(idx, embedder, 4)
		results, err := r.Retrieve(ctx, info, chunks[1])
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, chunks[1], results[0].Content)
		assert.Equal(t, 1, results[0].Position)
		assert.Zero(t, results[0].Distance)
		for i := 1; i < len(results); i++ {
			assert.LessOrEqual(t, results[i-1].Distance, results[i].Distance)
		}
	})

	t.Run("top k", func(t *testing.T) {
		r := NewRetriever(idx, embedder, 2)
		results, err := r.Retrieve(ctx, info, chunks[0])
		require.NoError(t, err)
		assert.Len(t, results, 2)
	})

	t.Run("model mismatch", func(t *testing.T) {
		other := mock.NewMockEmbedder()
		other.ModelName = "other-model"
		r := NewRetriever(idx, other, 4)
		_, err := r.Retrieve(ctx, info, chunks[0])
		assert.ErrorIs(t, err, types.ErrEmbeddingModelMismatch)
		assert.Zero(t, other.QueryCalls())
	})

	t.Run("stale handle still answers", func(t *testing.T) {
		r := NewRetriever(idx, embedder, 4)
		stale := *info
		stale.BuildID = "older-build"
		results, err := r.Retrieve(ctx, &stale, chunks[2])
		require.NoError(t, err)
		assert.Equal(t, chunks[2], results[0].Content)
	})
}

func TestRetriever_IndexMissingOnDisk(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	r := NewRetriever(newTestVectorIndex(t), embedder, 4)

	_, err := r.Retrieve(context.Background(), &types.IndexInfo{BuildID: "gone"}, "q")
	assert.ErrorIs(t, err, types.ErrIndexMissing)
}
