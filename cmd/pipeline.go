package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tieubaoca/pdfchat/config"
	"github.com/tieubaoca/pdfchat/database"
	"github.com/tieubaoca/pdfchat/service"
	"github.com/tieubaoca/pdfchat/types"
)

// pipeline holds everything the commands share: the vector index and the
// chat service built on top of it.
type pipeline struct {
	index   database.VectorIndex
	indexer *service.IndexService
	chat    *service.ChatService
}

func openIndex(cfg config.IndexConfig) (database.VectorIndex, error) {
	switch cfg.Backend {
	case "weaviate":
		return database.NewWeaviateIndex(cfg.Weaviate, slog.Default())
	case "local":
		return database.NewBadgerIndex(cfg.Path, slog.Default()), nil
	}
	return nil, fmt.Errorf("unknown index backend %q", cfg.Backend)
}

// newPipeline builds the chat service from cfg. history may be nil.
func newPipeline(ctx context.Context, cfg *config.Config, history service.HistoryService) (*pipeline, error) {
	provider, err := service.NewProvider(ctx, cfg.Provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s provider: %w", cfg.Provider.Name, err)
	}
	splitter, err := service.NewTextSplitter(types.DocumentServiceConfig{
		MaxChunkSize: cfg.Chunker.ChunkSize,
		OverlapSize:  cfg.Chunker.Overlap,
	})
	if err != nil {
		return nil, err
	}
	index, err := openIndex(cfg.Index)
	if err != nil {
		return nil, err
	}

	indexer := service.NewIndexService(index, provider)
	chat := service.NewChatService(
		service.NewPDFService(cfg.UploadDir, cfg.PDF, nil),
		splitter,
		indexer,
		service.NewRetriever(index, provider, cfg.Retrieval.TopK),
		service.NewAnswerer(provider, cfg.Provider.Temperature),
		history,
	)
	return &pipeline{
		index:   index,
		indexer: indexer,
		chat:    chat,
	}, nil
}

func (p *pipeline) Close() error {
	return p.index.Close()
}
