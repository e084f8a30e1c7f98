package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tieubaoca/pdfchat/types"
)

// GuardProvider bounds every provider call with a timeout and optionally
// retries it. Any failure that escapes is wrapped in types.ErrProviderFailure.
type GuardProvider struct {
	next    AIService
	timeout time.Duration
	retries int
	logger  *slog.Logger
}

var _ AIService = (*GuardProvider)(nil)

// NewGuardProvider wraps next. A zero timeout disables the per-call deadline;
// retries is the number of extra attempts after the first failure.
func NewGuardProvider(next AIService, timeout time.Duration, retries int) *GuardProvider {
	if retries < 0 {
		retries = 0
	}
	return &GuardProvider{
		next:    next,
		timeout: timeout,
		retries: retries,
		logger:  slog.Default().With("component", "provider-guard"),
	}
}

func (g *GuardProvider) Model() string {
	return g.next.Model()
}

func (g *GuardProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	var vectors [][]float32
	err := g.do(ctx, "embed_documents", func(ctx context.Context) error {
		var err error
		vectors, err = g.next.EmbedDocuments(ctx, texts)
		return err
	})
	return vectors, err
}

func (g *GuardProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	var vector []float32
	err := g.do(ctx, "embed_query", func(ctx context.Context) error {
		var err error
		vector, err = g.next.EmbedQuery(ctx, text)
		return err
	})
	return vector, err
}

func (g *GuardProvider) Generate(ctx context.Context, prompt string, temperature float32) (string, error) {
	var out string
	err := g.do(ctx, "generate", func(ctx context.Context) error {
		var err error
		out, err = g.next.Generate(ctx, prompt, temperature)
		return err
	})
	return out, err
}

func (g *GuardProvider) do(ctx context.Context, op string, call func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt <= g.retries; attempt++ {
		if attempt > 0 {
			g.logger.Warn("retrying provider call", "op", op, "attempt", attempt, "err", err)
		}
		err = g.attempt(ctx, call)
		if err == nil {
			return nil
		}
		// The caller gave up; further attempts would fail the same way
		if ctx.Err() != nil {
			break
		}
	}
	return fmt.Errorf("%w: %s: %w", types.ErrProviderFailure, op, err)
}

func (g *GuardProvider) attempt(ctx context.Context, call func(ctx context.Context) error) error {
	if g.timeout <= 0 {
		return call(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return call(ctx)
}
