package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiService talks to the Google Generative AI API. Chunks are embedded
// with the retrieval-document task type and questions with retrieval-query.
type GeminiService struct {
	client         *genai.Client
	embeddingModel string
	chatModel      string
	logger         *slog.Logger
}

var _ AIService = (*GeminiService)(nil)

func NewGeminiService(ctx context.Context, apiKey, embeddingModel, chatModel string) (*GeminiService, error) {
	if apiKey == "" {
		return nil, errors.New("no API key provided")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiService{
		client:         client,
		embeddingModel: embeddingModel,
		chatModel:      chatModel,
		logger:         slog.Default().With("component", "gemini"),
	}, nil
}

func (s *GeminiService) Model() string {
	return s.embeddingModel
}

func (s *GeminiService) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	em := s.client.EmbeddingModel(s.embeddingModel)
	em.TaskType = genai.TaskTypeRetrievalDocument

	batch := em.NewBatch()
	for _, text := range texts {
		batch.AddContent(genai.Text(text))
	}
	s.logger.Debug("embedding documents", "count", len(texts))
	res, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, err
	}

	vectors := make([][]float32, 0, len(res.Embeddings))
	for _, e := range res.Embeddings {
		if e == nil {
			vectors = append(vectors, nil)
			continue
		}
		vectors = append(vectors, e.Values)
	}
	return vectors, nil
}

func (s *GeminiService) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	em := s.client.EmbeddingModel(s.embeddingModel)
	em.TaskType = genai.TaskTypeRetrievalQuery

	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, err
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, errors.New("no embedding returned")
	}
	return res.Embedding.Values, nil
}

func (s *GeminiService) Generate(ctx context.Context, prompt string, temperature float32) (string, error) {
	model := s.client.GenerativeModel(s.chatModel)
	model.SetTemperature(temperature)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 {
		return "", errors.New("no response generated")
	}

	var content strings.Builder
	for _, part := range firstContent(resp).Parts {
		if text, ok := part.(genai.Text); ok {
			content.WriteString(string(text))
		}
	}
	return content.String(), nil
}

func firstContent(resp *genai.GenerateContentResponse) *genai.Content {
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			return cand.Content
		}
	}
	return &genai.Content{}
}

func (s *GeminiService) Close() error {
	return s.client.Close()
}
