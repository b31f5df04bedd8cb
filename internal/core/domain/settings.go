package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or chat completion.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	Provider  AIProvider
	Model     string
	BaseURL   string
	APIKey    string
	BatchSize int

	// CacheSize bounds the query embedding cache. Zero disables it.
	CacheSize int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds chat completion provider configuration.
type LLMSettings struct {
	Provider    AIProvider
	Model       string
	BaseURL     string
	APIKey      string
	MaxTokens   int
	Temperature float64
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() || l.Model == "" {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// VectorStoreSettings holds vector database configuration.
type VectorStoreSettings struct {
	// Backend is "qdrant" or "memory".
	Backend    string
	URL        string
	APIKey     string
	Collection string
}

// BlobSettings holds S3-compatible object storage configuration.
type BlobSettings struct {
	Endpoint       string
	Region         string
	Bucket         string
	AccessKey      string
	SecretKey      string
	ForcePathStyle bool
}

// IsConfigured returns true if a bucket is set.
func (b BlobSettings) IsConfigured() bool {
	return b.Bucket != ""
}

// DatabaseSettings holds record store configuration.
type DatabaseSettings struct {
	// URL is a postgres:// URL or a sqlite file path. Empty uses the data directory.
	URL string
}

// ChunkerSettings holds chunking configuration.
type ChunkerSettings struct {
	// Preset is "default" (1000/200) or "semantic" (512/64).
	Preset       string
	ChunkSize    int
	ChunkOverlap int
}

// ResilienceSettings configures the circuit breakers around AI providers.
type ResilienceSettings struct {
	BreakerTimeout     time.Duration
	BreakerMinRequests int
}

// AppSettings holds all application settings.
type AppSettings struct {
	OwnerID     string
	DataDir     string
	Embedding   EmbeddingSettings
	LLM         LLMSettings
	VectorStore VectorStoreSettings
	Blob        BlobSettings
	Database    DatabaseSettings
	Chunker     ChunkerSettings
	Resilience  ResilienceSettings
}

// Chunker presets.
const (
	ChunkerPresetDefault  = "default"
	ChunkerPresetSemantic = "semantic"
)

// Vector store backends.
const (
	VectorBackendQdrant = "qdrant"
	VectorBackendMemory = "memory"
)

// DefaultAppSettings returns settings with sensible defaults.
// API keys are left empty; they come from the environment or the config file.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		OwnerID: "admin",
		Embedding: EmbeddingSettings{
			Provider:  AIProviderOpenAI,
			Model:     DefaultEmbeddingModel,
			BatchSize: 100,
			CacheSize: 256,
		},
		LLM: LLMSettings{
			Provider:    AIProviderAnthropic,
			Model:       "claude-3-5-sonnet-latest",
			MaxTokens:   4000,
			Temperature: 0.7,
		},
		VectorStore: VectorStoreSettings{
			Backend:    VectorBackendQdrant,
			URL:        "http://localhost:6333",
			Collection: "documents",
		},
		Blob: BlobSettings{
			Region:         "us-east-1",
			ForcePathStyle: true,
		},
		Chunker: ChunkerSettings{
			Preset:       ChunkerPresetDefault,
			ChunkSize:    1000,
			ChunkOverlap: 200,
		},
		Resilience: ResilienceSettings{
			BreakerTimeout:     30 * time.Second,
			BreakerMinRequests: 5,
		},
	}
}

// ApplyChunkerPreset overrides size and overlap from a named preset.
func (c *ChunkerSettings) ApplyChunkerPreset() error {
	switch c.Preset {
	case "", ChunkerPresetDefault:
		if c.ChunkSize == 0 {
			c.ChunkSize, c.ChunkOverlap = 1000, 200
		}
	case ChunkerPresetSemantic:
		c.ChunkSize, c.ChunkOverlap = 512, 64
	default:
		return fmt.Errorf("%w: unknown chunker preset %q", ErrInvalidInput, c.Preset)
	}
	return nil
}

// Validate checks cross-field constraints.
func (s AppSettings) Validate() error {
	if s.Chunker.ChunkSize <= 0 {
		return invalidInput("chunker.chunk_size must be positive")
	}
	if s.Chunker.ChunkOverlap < 0 || s.Chunker.ChunkOverlap >= s.Chunker.ChunkSize {
		return invalidInput("chunker.chunk_overlap must be in [0, chunk_size)")
	}
	switch s.VectorStore.Backend {
	case VectorBackendQdrant, VectorBackendMemory:
	default:
		return invalidInput(fmt.Sprintf("unknown vector backend %q", s.VectorStore.Backend))
	}
	if s.Embedding.BatchSize <= 0 {
		return invalidInput("embedding.batch_size must be positive")
	}
	if s.LLM.Temperature < 0 || s.LLM.Temperature > 1 {
		return invalidInput("llm.temperature must be between 0 and 1")
	}
	return nil
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{AIProviderOllama, AIProviderOpenAI}
}

// AllLLMProviders returns providers that support chat completion.
func AllLLMProviders() []AIProvider {
	return []AIProvider{AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic}
}
