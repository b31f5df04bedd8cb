package driven

import "context"

// LLMService provides chat completion for retrieval-augmented answers.
//
// Implementations may include:
//   - Anthropic (Claude)
//   - OpenAI (GPT-4o)
//   - Ollama (local models)
type LLMService interface {
	// Chat conducts a multi-turn conversation. A leading "system" message,
	// if present, is passed as the system instruction.
	// Returns an error if the provider answers with anything but text.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// Chat message roles understood by every provider.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}
