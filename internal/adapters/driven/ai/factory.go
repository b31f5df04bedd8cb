// Package ai provides factory functions and decorators for AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/docrag/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/docrag/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/docrag/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/docrag/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/docrag/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// Services holds the AI adapters built from settings, already decorated
// with circuit breakers and the embedding cache.
type Services struct {
	Embedding driven.EmbeddingService
	LLM       driven.LLMService

	// Warnings lists non-fatal problems found while pinging providers.
	Warnings []string
}

// Close releases all resources held by the services.
func (s *Services) Close() {
	if s.Embedding != nil {
		s.Embedding.Close()
	}
	if s.LLM != nil {
		s.LLM.Close()
	}
}

// Build creates both AI services from settings. Missing configuration is an
// error; an unreachable provider is only a warning so the CLI keeps working
// for commands that do not need it.
func Build(ctx context.Context, settings *domain.AppSettings) (*Services, error) {
	embed, err := CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	llm, err := CreateLLMService(&settings.LLM)
	if err != nil {
		if embed != nil {
			embed.Close()
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}

	out := &Services{}
	if embed != nil {
		if err := ping(ctx, embed.Ping); err != nil {
			out.Warnings = append(out.Warnings, fmt.Sprintf("embedding provider unreachable: %v", err))
		}
		embed = NewBreakerEmbedding(embed, settings.Resilience)
		if settings.Embedding.CacheSize > 0 {
			cached, err := NewCachedEmbedding(embed, settings.Embedding.CacheSize)
			if err != nil {
				return nil, err
			}
			embed = cached
		}
		out.Embedding = embed
	}
	if llm != nil {
		if err := ping(ctx, llm.Ping); err != nil {
			out.Warnings = append(out.Warnings, fmt.Sprintf("llm provider unreachable: %v", err))
		}
		out.LLM = NewBreakerLLM(llm, settings.Resilience)
	}
	return out, nil
}

// ValidateEmbeddingConfig creates an embedding service and pings it.
func ValidateEmbeddingConfig(ctx context.Context, settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()
	return ping(ctx, svc.Ping)
}

// ValidateLLMConfig creates an LLM service and pings it.
func ValidateLLMConfig(ctx context.Context, settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()
	return ping(ctx, svc.Ping)
}

func ping(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return fn(ctx)
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		if settings != nil && settings.Provider == domain.AIProviderAnthropic {
			return nil, fmt.Errorf("anthropic does not support embeddings, use ollama or openai")
		}
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}
