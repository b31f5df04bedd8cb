package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/logger"
)

// Breaker defaults used when ResilienceSettings leaves a field unset.
const (
	DefaultBreakerTimeout     = 30 * time.Second
	DefaultBreakerMinRequests = 5
	breakerFailureRatio       = 0.5
)

var (
	_ driven.EmbeddingService = (*BreakerEmbedding)(nil)
	_ driven.LLMService       = (*BreakerLLM)(nil)
)

func newBreaker(name string, cfg domain.ResilienceSettings) *gobreaker.CircuitBreaker {
	timeout := cfg.BreakerTimeout
	if timeout <= 0 {
		timeout = DefaultBreakerTimeout
	}
	minRequests := cfg.BreakerMinRequests
	if minRequests <= 0 {
		minRequests = DefaultBreakerMinRequests
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < uint32(minRequests) {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= breakerFailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker %s: %s -> %s", name, from, to)
		},
		// A caller giving up is not a provider failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
}

// breakerErr maps an open breaker onto the given unavailability sentinel.
func breakerErr(err, unavailable error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", unavailable, err)
	}
	return err
}

// BreakerEmbedding guards an EmbeddingService with a circuit breaker.
type BreakerEmbedding struct {
	driven.EmbeddingService
	cb *gobreaker.CircuitBreaker
}

// NewBreakerEmbedding wraps next with a circuit breaker.
func NewBreakerEmbedding(next driven.EmbeddingService, cfg domain.ResilienceSettings) *BreakerEmbedding {
	return &BreakerEmbedding{
		EmbeddingService: next,
		cb:               newBreaker("embedding:"+next.ModelName(), cfg),
	}
}

// EmbedBatch embeds texts unless the breaker is open.
func (b *BreakerEmbedding) EmbedBatch(ctx context.Context, texts []string) (*driven.EmbeddingResponse, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.EmbeddingService.EmbedBatch(ctx, texts)
	})
	if err != nil {
		return nil, breakerErr(err, domain.ErrEmbeddingUnavailable)
	}
	return out.(*driven.EmbeddingResponse), nil
}

// State reports the breaker state.
func (b *BreakerEmbedding) State() gobreaker.State {
	return b.cb.State()
}

// BreakerLLM guards an LLMService with a circuit breaker.
type BreakerLLM struct {
	driven.LLMService
	cb *gobreaker.CircuitBreaker
}

// NewBreakerLLM wraps next with a circuit breaker.
func NewBreakerLLM(next driven.LLMService, cfg domain.ResilienceSettings) *BreakerLLM {
	return &BreakerLLM{
		LLMService: next,
		cb:         newBreaker("llm:"+next.ModelName(), cfg),
	}
}

// Chat runs a completion unless the breaker is open.
func (b *BreakerLLM) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.LLMService.Chat(ctx, messages, opts)
	})
	if err != nil {
		return "", breakerErr(err, domain.ErrLLMUnavailable)
	}
	return out.(string), nil
}

// State reports the breaker state.
func (b *BreakerLLM) State() gobreaker.State {
	return b.cb.State()
}
