package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/pdfchat/mock"
	"github.com/tieubaoca/pdfchat/types"
)

func TestGuardProvider_PassesThrough(t *testing.T) {
	provider := mock.NewMockProvider(nil, nil)
	g := NewGuardProvider(provider, time.Second, 0)

	assert.Equal(t, mock.DefaultModel, g.Model())

	vectors, err := g.EmbedDocuments(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vectors, 2)

	out, err := g.Generate(context.Background(), "prompt", 0.5)
	require.NoError(t, err)
	assert.Equal(t, mock.DefaultAnswer, out)
	assert.Equal(t, float32(0.5), provider.LastTemperature)
}

func TestGuardProvider_WrapsFailures(t *testing.T) {
	cause := errors.New("quota exceeded")
	generator := mock.NewMockGenerator().WithGenerateFunc(func(context.Context, string, float32) (string, error) {
		return "", cause
	})
	g := NewGuardProvider(mock.NewMockProvider(nil, generator), 0, 0)

	_, err := g.Generate(context.Background(), "prompt", 0.9)
	assert.ErrorIs(t, err, types.ErrProviderFailure)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, generator.CallCount(), "no retries by default")
}

func TestGuardProvider_Retries(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	attempts := 0
	embedder.EmbedQueryFunc = func(ctx context.Context, text string) ([]float32, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("unavailable")
		}
		return []float32{1}, nil
	}
	g := NewGuardProvider(mock.NewMockProvider(embedder, nil), 0, 2)

	vector, err := g.EmbedQuery(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, []float32{1}, vector)
	assert.Equal(t, 3, attempts)
}

func TestGuardProvider_Timeout(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedQueryFunc = func(ctx context.Context, text string) ([]float32, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	g := NewGuardProvider(mock.NewMockProvider(embedder, nil), 10*time.Millisecond, 0)

	_, err := g.EmbedQuery(context.Background(), "q")
	assert.ErrorIs(t, err, types.ErrProviderFailure)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGuardProvider_NoRetryAfterCancel(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedDocumentsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, ctx.Err()
	}
	g := NewGuardProvider(mock.NewMockProvider(embedder, nil), 0, 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := g.EmbedDocuments(ctx, []string{"a"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, embedder.DocumentCalls())
}
