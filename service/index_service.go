package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tieubaoca/pdfchat/database"
	"github.com/tieubaoca/pdfchat/types"
)

const embedBatchSize = 100

// IndexService embeds chunks and persists them as the current index.
type IndexService struct {
	index    database.VectorIndex
	embedder Embedder
	logger   *slog.Logger
}

func NewIndexService(index database.VectorIndex, embedder Embedder) *IndexService {
	return &IndexService{
		index:    index,
		embedder: embedder,
		logger:   slog.Default().With("component", "index-builder"),
	}
}

// Build embeds every chunk and replaces the persisted index with them. An
// empty chunk list fails with types.ErrIndexMissing before the provider is
// called. No chunk is ever dropped: any embedding error aborts the build and
// leaves the previous index in place.
func (s *IndexService) Build(ctx context.Context, chunks []string) (*types.IndexInfo, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("nothing to index: %w", types.ErrIndexMissing)
	}

	indexed := make([]types.IndexedChunk, 0, len(chunks))
	for i := 0; i < len(chunks); i += embedBatchSize {
		end := min(i+embedBatchSize, len(chunks))
		batch := chunks[i:end]

		vectors, err := s.embedder.EmbedDocuments(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("failed to embed chunks %d-%d: %w", i, end, err)
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("%w: got %d embeddings for %d chunks", types.ErrProviderFailure, len(vectors), len(batch))
		}
		for j, vector := range vectors {
			if len(vector) == 0 {
				return nil, fmt.Errorf("%w: empty embedding for chunk %d", types.ErrProviderFailure, i+j)
			}
			indexed = append(indexed, types.IndexedChunk{
				Position: i + j,
				Content:  batch[j],
				Vector:   vector,
			})
		}
		s.logger.Debug("embedded batch", "from", i, "to", end, "total", len(chunks))
	}

	info, err := s.index.Build(ctx, s.embedder.Model(), indexed)
	if err != nil {
		return nil, fmt.Errorf("failed to persist index: %w", err)
	}
	return info, nil
}

// Current describes the persisted index, or fails with types.ErrIndexMissing.
func (s *IndexService) Current(ctx context.Context) (*types.IndexInfo, error) {
	return s.index.Stat(ctx)
}
