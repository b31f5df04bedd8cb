package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/logger"
	"github.com/custodia-labs/docrag/internal/metrics"
)

// Embedder batching defaults.
const (
	DefaultEmbedBatchSize = 100
	DefaultBatchPause     = 100 * time.Millisecond
)

// Embedder turns texts into vectors through an EmbeddingService.
// Large inputs are split into groups, one upstream call per group,
// with a pause between calls to stay under provider rate limits.
type Embedder struct {
	service driven.EmbeddingService
	metrics *metrics.Metrics
	pause   time.Duration
}

// EmbedderOption configures an Embedder.
type EmbedderOption func(*Embedder)

// WithBatchPause sets the minimum gap between upstream calls.
func WithBatchPause(d time.Duration) EmbedderOption {
	return func(e *Embedder) { e.pause = d }
}

// WithEmbedderMetrics records batch calls, tokens and cost.
func WithEmbedderMetrics(m *metrics.Metrics) EmbedderOption {
	return func(e *Embedder) { e.metrics = m }
}

// NewEmbedder wraps service.
func NewEmbedder(service driven.EmbeddingService, opts ...EmbedderOption) *Embedder {
	e := &Embedder{service: service, pause: DefaultBatchPause}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Model returns the upstream model name.
func (e *Embedder) Model() string {
	return e.service.ModelName()
}

// EmbedOne embeds a single text.
func (e *Embedder) EmbedOne(ctx context.Context, text string) (domain.EmbeddingVector, error) {
	if strings.TrimSpace(text) == "" {
		return domain.EmbeddingVector{}, domain.ErrNoValidInput
	}

	resp, err := e.call(ctx, []string{text})
	if err != nil {
		return domain.EmbeddingVector{}, err
	}
	return domain.EmbeddingVector{
		Vector:     resp.Vectors[0],
		TokenCount: resp.TokensUsed,
		Model:      e.service.ModelName(),
	}, nil
}

// EmbedBatch embeds every non-blank text in order.
// Blank entries are dropped first, so Vectors[i] matches the i-th non-blank input.
// A failing group fails the whole call and no partial result is returned.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string, batchSize int) (*domain.BatchEmbedding, error) {
	valid := make([]string, 0, len(texts))
	for _, t := range texts {
		if strings.TrimSpace(t) != "" {
			valid = append(valid, t)
		}
	}
	if len(valid) == 0 {
		return nil, domain.ErrNoValidInput
	}
	if batchSize <= 0 {
		batchSize = DefaultEmbedBatchSize
	}

	groups := (len(valid) + batchSize - 1) / batchSize
	logger.Debug("Embedding %d texts in %d batch(es) with %s", len(valid), groups, e.service.ModelName())

	// One token per pause interval, no burst: the first call goes out
	// immediately and each later call waits out the gap.
	var limiter *rate.Limiter
	if e.pause > 0 {
		limiter = rate.NewLimiter(rate.Every(e.pause), 1)
	}

	out := &domain.BatchEmbedding{
		Vectors: make([][]float32, 0, len(valid)),
		Model:   e.service.ModelName(),
	}
	for start := 0; start < len(valid); start += batchSize {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingService, err)
			}
		}

		end := min(start+batchSize, len(valid))
		resp, err := e.call(ctx, valid[start:end])
		if err != nil {
			return nil, err
		}
		out.Vectors = append(out.Vectors, resp.Vectors...)
		out.TotalTokens += resp.TokensUsed
	}

	return out, nil
}

// call performs one upstream request and checks the response shape.
func (e *Embedder) call(ctx context.Context, texts []string) (*driven.EmbeddingResponse, error) {
	model := e.service.ModelName()

	resp, err := e.service.EmbedBatch(ctx, texts)
	if err == nil && (resp == nil || len(resp.Vectors) != len(texts)) {
		got := 0
		if resp != nil {
			got = len(resp.Vectors)
		}
		err = fmt.Errorf("%w: got %d vectors for %d texts", domain.ErrShapeMismatch, got, len(texts))
	}
	if err != nil {
		e.metrics.RecordEmbeddingBatch(model, 0, 0, err)
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingService, err)
	}

	e.metrics.RecordEmbeddingBatch(model, resp.TokensUsed, domain.EmbeddingCost(resp.TokensUsed, model), nil)
	return resp, nil
}
