// Package openai answers chat turns with the OpenAI chat completions API.
package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/docrag/internal/adapters/driven/restclient"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL    = "https://api.openai.com/v1"
	DefaultLLMModel   = "gpt-4o-mini"
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig holds configuration for the OpenAI LLM service.
type LLMConfig struct {
	// APIKey is required.
	APIKey string

	// BaseURL can point at any server speaking the same API.
	BaseURL string

	Model   string
	Timeout time.Duration
}

// LLMService answers chat turns using OpenAI models.
type LLMService struct {
	api   *restclient.Client
	model string
}

type chatCompletionRequest struct {
	Model       string              `json:"model"`
	Messages    []chatCompletionMsg `json:"messages"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	Temperature float64             `json:"temperature,omitempty"`
}

type chatCompletionMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			// Content is null when the model answered with a tool call or a refusal.
			Content *string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	return &LLMService{
		api: restclient.New(restclient.Config{
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
			Header:  map[string]string{"Authorization": "Bearer " + cfg.APIKey},
		}),
		model: cfg.Model,
	}, nil
}

// Chat posts the conversation to /chat/completions. System messages are
// native to this API and pass through unchanged.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	req := chatCompletionRequest{
		Model:       s.model,
		Messages:    make([]chatCompletionMsg, len(messages)),
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}
	for i, m := range messages {
		req.Messages[i] = chatCompletionMsg{Role: m.Role, Content: m.Content}
	}

	var resp chatCompletionResponse
	if err := s.api.Post(ctx, "/chat/completions", req, &resp); err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices returned")
	}
	choice := resp.Choices[0]
	if choice.Message.Content == nil {
		return "", fmt.Errorf("openai: unexpected non-text response (finish_reason %q)", choice.FinishReason)
	}
	return *choice.Message.Content, nil
}

func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists models, which checks the key without spending tokens.
func (s *LLMService) Ping(ctx context.Context) error {
	if err := s.api.Get(ctx, "/models", nil); err != nil {
		return fmt.Errorf("openai: ping: %w", err)
	}
	return nil
}

func (s *LLMService) Close() error {
	s.api.CloseIdleConnections()
	return nil
}
