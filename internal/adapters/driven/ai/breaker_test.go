package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

func TestBreakerLLM_OpensAfterFailures(t *testing.T) {
	inner := &fakeLLM{err: errors.New("upstream 500")}
	b := NewBreakerLLM(inner, domain.ResilienceSettings{BreakerTimeout: time.Hour, BreakerMinRequests: 3})

	msgs := []driven.ChatMessage{{Role: driven.RoleUser, Content: "q"}}
	for i := 0; i < 3; i++ {
		_, err := b.Chat(context.Background(), msgs, driven.ChatOptions{})
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrLLMUnavailable)
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	_, err := b.Chat(context.Background(), msgs, driven.ChatOptions{})
	require.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.Equal(t, 3, inner.calls, "open breaker must not reach the provider")
}

func TestBreakerLLM_PassesThrough(t *testing.T) {
	b := NewBreakerLLM(&fakeLLM{}, domain.ResilienceSettings{})
	out, err := b.Chat(context.Background(), nil, driven.ChatOptions{})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, "fake-llm", b.ModelName())
}

func TestBreakerEmbedding_CanceledDoesNotTrip(t *testing.T) {
	inner := &fakeEmbedding{err: context.Canceled}
	b := NewBreakerEmbedding(inner, domain.ResilienceSettings{BreakerMinRequests: 1})

	for i := 0; i < 5; i++ {
		_, err := b.EmbedBatch(context.Background(), []string{"x"})
		require.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreakerEmbedding_Open(t *testing.T) {
	inner := &fakeEmbedding{err: errors.New("down")}
	b := NewBreakerEmbedding(inner, domain.ResilienceSettings{BreakerTimeout: time.Hour, BreakerMinRequests: 1})

	_, err := b.EmbedBatch(context.Background(), []string{"x"})
	require.Error(t, err)

	_, err = b.EmbedBatch(context.Background(), []string{"x"})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}
