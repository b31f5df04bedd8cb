package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Note: This is separate from VectorIndex which stores and searches vectors.
// EmbeddingService generates vectors; VectorIndex stores them.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-large, text-embedding-3-small)
//   - Ollama (nomic-embed-text, all-minilm)
type EmbeddingService interface {
	// EmbedBatch embeds texts in a single upstream request.
	// Vectors are returned in input order. Batching policy lives in the caller.
	EmbedBatch(ctx context.Context, texts []string) (*EmbeddingResponse, error)

	// Dimensions returns the embedding vector size (e.g., 768, 1536, 3072).
	// This is determined by the model and must match VectorIndex configuration.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// EmbeddingResponse is the result of one upstream embedding request.
type EmbeddingResponse struct {
	// Vectors holds one embedding per input text, in input order.
	Vectors [][]float32

	// TokensUsed is the token count reported by the provider.
	TokensUsed int
}
