// Package openai embeds text with the OpenAI embeddings endpoint.
package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/docrag/internal/adapters/driven/restclient"
	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = domain.DefaultEmbeddingModel
	DefaultTimeout = 60 * time.Second
)

// Config holds configuration for the OpenAI embedding service.
type Config struct {
	// APIKey is required.
	APIKey string

	// BaseURL can point at Azure OpenAI or any compatible server.
	BaseURL string

	// Model decides the vector size, see domain.EmbeddingDimensions.
	Model string

	Timeout time.Duration
}

// EmbeddingService turns chunk texts into vectors with one request per batch.
type EmbeddingService struct {
	api        *restclient.Client
	model      string
	dimensions int
}

type embeddingRequest struct {
	Model          string   `json:"model"`
	Input          []string `json:"input"`
	EncodingFormat string   `json:"encoding_format"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// NewEmbeddingService fails without an API key. No request is made.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &EmbeddingService{
		api: restclient.New(restclient.Config{
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
			Header:  map[string]string{"Authorization": "Bearer " + cfg.APIKey},
		}),
		model:      cfg.Model,
		dimensions: domain.EmbeddingDimensions(cfg.Model),
	}, nil
}

// EmbedBatch sends all texts in one /embeddings request.
// The response may list vectors out of order; they are placed by index.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) (*driven.EmbeddingResponse, error) {
	if len(texts) == 0 {
		return &driven.EmbeddingResponse{}, nil
	}

	var resp embeddingResponse
	err := s.api.Post(ctx, "/embeddings", embeddingRequest{
		Model:          s.model,
		Input:          texts,
		EncodingFormat: "float",
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai: expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, fmt.Errorf("openai: embedding index %d out of range", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	for i, v := range vectors {
		if v == nil {
			return nil, fmt.Errorf("openai: missing embedding for input %d", i)
		}
	}

	return &driven.EmbeddingResponse{Vectors: vectors, TokensUsed: resp.Usage.TotalTokens}, nil
}

func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping lists models, which checks the key without spending tokens.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if err := s.api.Get(ctx, "/models", nil); err != nil {
		return fmt.Errorf("openai: ping: %w", err)
	}
	return nil
}

func (s *EmbeddingService) Close() error {
	s.api.CloseIdleConnections()
	return nil
}
