package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

type OpenAIService struct {
	client         *openai.Client
	embeddingModel string
	chatModel      string
}

var _ AIService = (*OpenAIService)(nil)

// NewOpenAIService creates a client for the OpenAI API. An empty baseURL
// keeps the library default.
func NewOpenAIService(baseURL, apiKey, embeddingModel, chatModel string) *OpenAIService {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	client := openai.NewClientWithConfig(config)
	return &OpenAIService{
		client:         client,
		embeddingModel: embeddingModel,
		chatModel:      chatModel,
	}
}

func (s *OpenAIService) Model() string {
	return s.embeddingModel
}

func (s *OpenAIService) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(s.embeddingModel),
	})
	if err != nil {
		return nil, err
	}

	// Data is not guaranteed to be in input order
	vectors := make([][]float32, len(resp.Data))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("embedding index %d out of range", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}

func (s *OpenAIService) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, errors.New("no embedding returned")
	}
	return vectors[0], nil
}

func (s *OpenAIService) Generate(ctx context.Context, prompt string, temperature float32) (string, error) {
	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.chatModel,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: temperature,
		},
	)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no response generated")
	}
	return resp.Choices[0].Message.Content, nil
}
