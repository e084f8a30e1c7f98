package mock

import (
	"context"
	"hash/fnv"
)

const (
	DefaultModel     = "mock-embedding"
	DefaultDimension = 8
	DefaultAnswer    = "mock answer"
)

// MockEmbedder is a test double for service.Embedder.
type MockEmbedder struct {
	// EmbedDocumentsFunc is called by EmbedDocuments if set.
	EmbedDocumentsFunc func(ctx context.Context, texts []string) ([][]float32, error)
	// EmbedQueryFunc is called by EmbedQuery if set.
	EmbedQueryFunc func(ctx context.Context, text string) ([]float32, error)

	ModelName string
	Dimension int

	documentCalls int
	queryCalls    int
}

func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{ModelName: DefaultModel, Dimension: DefaultDimension}
}

func (m *MockEmbedder) Model() string {
	return m.ModelName
}

func (m *MockEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	m.documentCalls++
	if m.EmbedDocumentsFunc != nil {
		return m.EmbedDocumentsFunc(ctx, texts)
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = Vector(text, m.Dimension)
	}
	return vectors, nil
}

func (m *MockEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	m.queryCalls++
	if m.EmbedQueryFunc != nil {
		return m.EmbedQueryFunc(ctx, text)
	}
	return Vector(text, m.Dimension), nil
}

// DocumentCalls returns how many times EmbedDocuments was called.
func (m *MockEmbedder) DocumentCalls() int {
	return m.documentCalls
}

// QueryCalls returns how many times EmbedQuery was called.
func (m *MockEmbedder) QueryCalls() int {
	return m.queryCalls
}

// MockGenerator is a test double for service.Generator.
type MockGenerator struct {
	GenerateFunc func(ctx context.Context, prompt string, temperature float32) (string, error)

	LastPrompt      string
	LastTemperature float32

	callCount int
}

func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// WithGenerateFunc sets custom generation behaviour.
func (m *MockGenerator) WithGenerateFunc(fn func(ctx context.Context, prompt string, temperature float32) (string, error)) *MockGenerator {
	m.GenerateFunc = fn
	return m
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string, temperature float32) (string, error) {
	m.callCount++
	m.LastPrompt = prompt
	m.LastTemperature = temperature
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt, temperature)
	}
	return DefaultAnswer, nil
}

func (m *MockGenerator) CallCount() int {
	return m.callCount
}

// MockProvider joins an embedder and a generator into one service.AIService.
type MockProvider struct {
	*MockEmbedder
	*MockGenerator
}

func NewMockProvider(embedder *MockEmbedder, generator *MockGenerator) *MockProvider {
	if embedder == nil {
		embedder = NewMockEmbedder()
	}
	if generator == nil {
		generator = NewMockGenerator()
	}
	return &MockProvider{MockEmbedder: embedder, MockGenerator: generator}
}

// Vector derives a deterministic vector from text with an FNV seeded LCG.
func Vector(text string, dim int) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	vector := make([]float32, dim)
	for i := range vector {
		seed = seed*1664525 + 1013904223
		vector[i] = float32(seed%1000) / 1000.0
	}
	return vector
}
