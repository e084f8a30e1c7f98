package database

import (
	"context"

	"github.com/tieubaoca/pdfchat/types"
)

// VectorIndex is the nearest-neighbour capability the pipeline depends on.
// Implementations own their storage format; callers treat it as opaque.
//
// Build replaces whatever index is stored at the backend's fixed location.
// Stat and Search return types.ErrIndexMissing when nothing has been built.
type VectorIndex interface {
	Build(ctx context.Context, model string, chunks []types.IndexedChunk) (*types.IndexInfo, error)
	Stat(ctx context.Context) (*types.IndexInfo, error)
	Search(ctx context.Context, vector []float32, k int) ([]types.RetrievedChunk, error)
	Close() error
}
