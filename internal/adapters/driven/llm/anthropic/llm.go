// Package anthropic answers chat turns with the Anthropic Messages API.
package anthropic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/docrag/internal/adapters/driven/restclient"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-3-5-sonnet-latest"
	DefaultMaxTokens = 4000
	DefaultTimeout   = 120 * time.Second

	anthropicVersion = "2023-06-01"
)

// Config holds configuration for the Anthropic LLM service.
type Config struct {
	// APIKey is required.
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService answers chat turns using Claude.
type LLMService struct {
	api   *restclient.Client
	model string
}

type messagesRequest struct {
	Model       string            `json:"model"`
	Messages    []messagesMessage `json:"messages"`
	MaxTokens   int               `json:"max_tokens"`
	System      string            `json:"system,omitempty"`
	Temperature *float64          `json:"temperature,omitempty"`
}

type messagesMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type messagesResponse struct {
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
}

func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: API key is required")
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

	return &LLMService{
		api: restclient.New(restclient.Config{
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
			Header: map[string]string{
				"x-api-key":         cfg.APIKey,
				"anthropic-version": anthropicVersion,
			},
		}),
		model: cfg.Model,
	}, nil
}

// Chat posts to /v1/messages. The API takes the system prompt as a separate
// field, so system messages are joined and lifted out of the list.
// Only the first content block is read and it must be text.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	req := messagesRequest{
		Model:     s.model,
		MaxTokens: opts.MaxTokens,
		Messages:  make([]messagesMessage, 0, len(messages)),
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = DefaultMaxTokens
	}
	if opts.Temperature > 0 {
		t := opts.Temperature
		req.Temperature = &t
	}

	var system []string
	for _, m := range messages {
		if m.Role == driven.RoleSystem {
			system = append(system, m.Content)
			continue
		}
		req.Messages = append(req.Messages, messagesMessage{Role: m.Role, Content: m.Content})
	}
	if len(req.Messages) == 0 {
		return "", fmt.Errorf("anthropic: at least one non-system message is required")
	}
	req.System = strings.Join(system, "\n\n")

	var resp messagesResponse
	if err := s.api.Post(ctx, "/v1/messages", req, &resp); err != nil {
		return "", fmt.Errorf("anthropic: %w", err)
	}

	if len(resp.Content) == 0 {
		return "", fmt.Errorf("anthropic: empty response (stop_reason %q)", resp.StopReason)
	}
	if first := resp.Content[0]; first.Type != "text" {
		return "", fmt.Errorf("anthropic: unexpected response type %q", first.Type)
	}
	return resp.Content[0].Text, nil
}

func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists models, which checks the key without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	if err := s.api.Get(ctx, "/v1/models", nil); err != nil {
		return fmt.Errorf("anthropic: ping: %w", err)
	}
	return nil
}

func (s *LLMService) Close() error {
	s.api.CloseIdleConnections()
	return nil
}
