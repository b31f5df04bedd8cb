package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptChatSystem is the system prompt frame for chat turns.
	// The template expects one %s placeholder for the context section.
	PromptChatSystem = "chat_system"

	// PromptChatContext introduces retrieved context.
	// The template expects one %s placeholder for the context block.
	PromptChatContext = "chat_context"

	// PromptChatNoContext is used when retrieval produced nothing.
	// This prompt has no format placeholders.
	PromptChatNoContext = "chat_no_context"
)
