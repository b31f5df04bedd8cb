package ai

import (
	"context"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

var (
	_ driven.EmbeddingService = UnconfiguredEmbedding{}
	_ driven.LLMService       = UnconfiguredLLM{}
)

// UnconfiguredEmbedding stands in when no embedding provider is set.
// Every call fails with ErrEmbeddingUnavailable.
type UnconfiguredEmbedding struct{}

func (UnconfiguredEmbedding) EmbedBatch(context.Context, []string) (*driven.EmbeddingResponse, error) {
	return nil, domain.ErrEmbeddingUnavailable
}

func (UnconfiguredEmbedding) Dimensions() int            { return 0 }
func (UnconfiguredEmbedding) ModelName() string          { return "" }
func (UnconfiguredEmbedding) Ping(context.Context) error { return domain.ErrEmbeddingUnavailable }
func (UnconfiguredEmbedding) Close() error               { return nil }

// UnconfiguredLLM stands in when no LLM provider is set.
// Every call fails with ErrLLMUnavailable.
type UnconfiguredLLM struct{}

func (UnconfiguredLLM) Chat(context.Context, []driven.ChatMessage, driven.ChatOptions) (string, error) {
	return "", domain.ErrLLMUnavailable
}

func (UnconfiguredLLM) ModelName() string          { return "" }
func (UnconfiguredLLM) Ping(context.Context) error { return domain.ErrLLMUnavailable }
func (UnconfiguredLLM) Close() error               { return nil }

// EmbeddingOrUnconfigured returns s.Embedding, or UnconfiguredEmbedding when unset.
func (s *Services) EmbeddingOrUnconfigured() driven.EmbeddingService {
	if s.Embedding == nil {
		return UnconfiguredEmbedding{}
	}
	return s.Embedding
}

// LLMOrUnconfigured returns s.LLM, or UnconfiguredLLM when unset.
func (s *Services) LLMOrUnconfigured() driven.LLMService {
	if s.LLM == nil {
		return UnconfiguredLLM{}
	}
	return s.LLM
}
