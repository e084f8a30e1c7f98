package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// LangchainService serves OpenAI-compatible endpoints (llama.cpp, vLLM,
// Ollama and the like) through langchaingo.
type LangchainService struct {
	llm            llms.Model
	embedder       embeddings.Embedder
	embeddingModel string
	logger         *slog.Logger
}

var _ AIService = (*LangchainService)(nil)

func NewLangchainService(baseURL, token, embeddingModel, chatModel string) (*LangchainService, error) {
	if baseURL == "" {
		return nil, errors.New("langchain provider requires a base url")
	}
	// Local OpenAI-compatible services usually don't require authentication
	if token == "" {
		token = "none"
	}
	client, err := openai.New(
		openai.WithBaseURL(baseURL),
		openai.WithToken(token),
		openai.WithModel(chatModel),
		openai.WithEmbeddingModel(embeddingModel),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create langchain client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	return &LangchainService{
		llm:            client,
		embedder:       embedder,
		embeddingModel: embeddingModel,
		logger:         slog.Default().With("component", "langchain"),
	}, nil
}

func (s *LangchainService) Model() string {
	return s.embeddingModel
}

func (s *LangchainService) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	s.logger.Debug("generating embeddings for texts", "count", len(texts))
	return s.embedder.EmbedDocuments(ctx, texts)
}

func (s *LangchainService) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return s.embedder.EmbedQuery(ctx, text)
}

func (s *LangchainService) Generate(ctx context.Context, prompt string, temperature float32) (string, error) {
	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(prompt)},
		},
	}
	response, err := s.llm.GenerateContent(ctx, content, llms.WithTemperature(float64(temperature)))
	if err != nil {
		return "", err
	}
	if len(response.Choices) < 1 {
		return "", errors.New("no response generated")
	}
	return response.Choices[0].Content, nil
}
