// Package ollama embeds text with a local Ollama server.
package ollama

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
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "nomic-embed-text"
	DefaultTimeout = 60 * time.Second
)

// Config holds configuration for the Ollama embedding service.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// EmbeddingService calls /api/embed, which accepts a whole batch per request.
type EmbeddingService struct {
	api        *restclient.Client
	model      string
	dimensions int
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings      [][]float32 `json:"embeddings"`
	PromptEvalCount int         `json:"prompt_eval_count"`
	Error           string      `json:"error,omitempty"`
}

func NewEmbeddingService(cfg Config) *EmbeddingService {
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
		api:        restclient.New(restclient.Config{BaseURL: cfg.BaseURL, Timeout: cfg.Timeout}),
		model:      cfg.Model,
		dimensions: domain.EmbeddingDimensions(cfg.Model),
	}
}

// EmbedBatch embeds texts in one request.
// Ollama has no usage block; prompt_eval_count stands in for the token count.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) (*driven.EmbeddingResponse, error) {
	if len(texts) == 0 {
		return &driven.EmbeddingResponse{}, nil
	}

	var resp embedResponse
	if err := s.api.Post(ctx, "/api/embed", embedRequest{Model: s.model, Input: texts}, &resp); err != nil {
		return nil, fmt.Errorf("ollama: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("ollama: %s", resp.Error)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama: expected %d embeddings, got %d", len(texts), len(resp.Embeddings))
	}

	return &driven.EmbeddingResponse{Vectors: resp.Embeddings, TokensUsed: resp.PromptEvalCount}, nil
}

func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping lists local models.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if err := s.api.Get(ctx, "/api/tags", nil); err != nil {
		return fmt.Errorf("ollama: ping: %w", err)
	}
	return nil
}

func (s *EmbeddingService) Close() error {
	s.api.CloseIdleConnections()
	return nil
}
