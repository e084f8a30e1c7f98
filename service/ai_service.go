package service

import (
	"context"
	"fmt"

	"github.com/tieubaoca/pdfchat/config"
)

// Embedder turns text into vectors. Documents and queries must be embedded
// by the same model for distances to be meaningful.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	// Model identifies the embedding model; it is stored with every index.
	Model() string
}

// Generator produces a completion for a single prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, temperature float32) (string, error)
}

// AIService is a provider that can both embed and generate.
type AIService interface {
	Embedder
	Generator
}

// NewProvider builds the provider named in cfg and wraps it with the
// timeout and retry guard.
func NewProvider(ctx context.Context, cfg config.ProviderConfig) (AIService, error) {
	var (
		provider AIService
		err      error
	)
	switch cfg.Name {
	case "gemini":
		provider, err = NewGeminiService(ctx, cfg.GoogleAPIKey, cfg.EmbeddingModel, cfg.ChatModel)
	case "openai":
		provider = NewOpenAIService(cfg.BaseURL, cfg.OpenAIAPIKey, cfg.EmbeddingModel, cfg.ChatModel)
	case "langchain":
		provider, err = NewLangchainService(cfg.BaseURL, cfg.OpenAIAPIKey, cfg.EmbeddingModel, cfg.ChatModel)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Name)
	}
	if err != nil {
		return nil, err
	}
	return NewGuardProvider(provider, cfg.Timeout, cfg.Retries), nil
}
