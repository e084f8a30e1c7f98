package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tieubaoca/pdfchat/database"
	"github.com/tieubaoca/pdfchat/types"
)

const DefaultTopK = 4

type Retriever struct {
	index    database.VectorIndex
	embedder Embedder
	topK     int
	logger   *slog.Logger
}

func NewRetriever(index database.VectorIndex, embedder Embedder, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{
		index:    index,
		embedder: embedder,
		topK:     topK,
		logger:   slog.Default().With("component", "retriever"),
	}
}

// Retrieve returns the chunks nearest to query, most similar first. handle is
// the index the session built; nil means the session has not built one.
func (r *Retriever) Retrieve(ctx context.Context, handle *types.IndexInfo, query string) ([]types.RetrievedChunk, error) {
	if handle == nil {
		return nil, types.ErrIndexMissing
	}

	info, err := r.index.Stat(ctx)
	if err != nil {
		return nil, err
	}
	if info.Model != r.embedder.Model() {
		return nil, fmt.Errorf("index built with %q, queries use %q: %w", info.Model, r.embedder.Model(), types.ErrEmbeddingModelMismatch)
	}
	// The index location is shared; another session may have rebuilt it
	if info.BuildID != handle.BuildID {
		r.logger.Warn("index was rebuilt since this session processed its documents",
			"session_build", handle.BuildID, "current_build", info.BuildID)
	}

	vector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}
	return r.index.Search(ctx, vector, r.topK)
}
