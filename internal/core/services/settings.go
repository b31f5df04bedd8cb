package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/core/ports/driving"
)

var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: these are key names, not credentials.
const (
	keyOwnerID = "owner_id"
	keyDataDir = "data_dir"

	keyEmbedProvider  = "embedding.provider"
	keyEmbedModel     = "embedding.model"
	keyEmbedBaseURL   = "embedding.base_url"
	keyEmbedAPIKey    = "embedding.api_key"
	keyEmbedBatchSize = "embedding.batch_size"
	keyEmbedCacheSize = "embedding.cache_size"

	keyLLMProvider    = "llm.provider"
	keyLLMModel       = "llm.model"
	keyLLMBaseURL     = "llm.base_url"
	keyLLMAPIKey      = "llm.api_key"
	keyLLMMaxTokens   = "llm.max_tokens"
	keyLLMTemperature = "llm.temperature"

	keyVectorBackend    = "vector.backend"
	keyVectorURL        = "vector.url"
	keyVectorAPIKey     = "vector.api_key"
	keyVectorCollection = "vector.collection"

	keyBlobEndpoint  = "blob.endpoint"
	keyBlobRegion    = "blob.region"
	keyBlobBucket    = "blob.bucket"
	keyBlobAccessKey = "blob.access_key"
	keyBlobSecretKey = "blob.secret_key"
	keyBlobPathStyle = "blob.force_path_style"

	keyDatabaseURL = "database.url"

	keyChunkerPreset  = "chunker.preset"
	keyChunkerSize    = "chunker.chunk_size"
	keyChunkerOverlap = "chunker.chunk_overlap"

	keyBreakerTimeout     = "resilience.breaker_timeout"
	keyBreakerMinRequests = "resilience.breaker_min_requests"
)

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindBool
	kindDuration
	kindProvider
)

// knownKeys lists every key Set accepts and how its value is parsed.
var knownKeys = map[string]valueKind{
	keyOwnerID: kindString, keyDataDir: kindString,

	keyEmbedProvider: kindProvider, keyEmbedModel: kindString, keyEmbedBaseURL: kindString,
	keyEmbedAPIKey: kindString, keyEmbedBatchSize: kindInt, keyEmbedCacheSize: kindInt,

	keyLLMProvider: kindProvider, keyLLMModel: kindString, keyLLMBaseURL: kindString,
	keyLLMAPIKey: kindString, keyLLMMaxTokens: kindInt, keyLLMTemperature: kindFloat,

	keyVectorBackend: kindString, keyVectorURL: kindString, keyVectorAPIKey: kindString,
	keyVectorCollection: kindString,

	keyBlobEndpoint: kindString, keyBlobRegion: kindString, keyBlobBucket: kindString,
	keyBlobAccessKey: kindString, keyBlobSecretKey: kindString, keyBlobPathStyle: kindBool,

	keyDatabaseURL: kindString,

	keyChunkerPreset: kindString, keyChunkerSize: kindInt, keyChunkerOverlap: kindInt,

	keyBreakerTimeout: kindDuration, keyBreakerMinRequests: kindInt,
}

// Environment variables that override the config file.
//
//nolint:gosec // G101: variable names, not credentials.
const (
	EnvOpenAIAPIKey         = "OPENAI_API_KEY"
	EnvOpenAIEmbeddingModel = "OPENAI_EMBEDDING_MODEL"
	EnvAnthropicAPIKey      = "ANTHROPIC_API_KEY"
	EnvAnthropicModel       = "ANTHROPIC_CLAUDE_MODEL"
	EnvQdrantURL            = "QDRANT_URL"
	EnvQdrantAPIKey         = "QDRANT_API_KEY"
	EnvQdrantCollection     = "QDRANT_COLLECTION"
	EnvMinioEndpoint        = "MINIO_ENDPOINT"
	EnvMinioAccessKey       = "MINIO_ACCESS_KEY"
	EnvMinioSecretKey       = "MINIO_SECRET_KEY"
	EnvMinioBucket          = "MINIO_BUCKET"
	EnvDatabaseURL          = "DATABASE_URL"
)

// SettingsService layers defaults, the config file and the environment.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a settings service reading the process environment.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
	}
}

// WithEnv replaces the environment lookup. Used by tests.
func (s *SettingsService) WithEnv(getenv func(string) string) *SettingsService {
	s.getenv = getenv
	return s
}

// Get returns validated settings. Precedence is environment, then file, then defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		OwnerID: s.getString(keyOwnerID, d.OwnerID),
		DataDir: s.getString(keyDataDir, d.DataDir),
		Embedding: domain.EmbeddingSettings{
			Provider:  s.getProvider(keyEmbedProvider, d.Embedding.Provider),
			Model:     s.getString(keyEmbedModel, d.Embedding.Model),
			BaseURL:   s.configStore.GetString(keyEmbedBaseURL),
			APIKey:    s.configStore.GetString(keyEmbedAPIKey),
			BatchSize: s.getInt(keyEmbedBatchSize, d.Embedding.BatchSize),
			CacheSize: s.getIntAllowZero(keyEmbedCacheSize, d.Embedding.CacheSize),
		},
		LLM: domain.LLMSettings{
			Provider:    s.getProvider(keyLLMProvider, d.LLM.Provider),
			Model:       s.getString(keyLLMModel, d.LLM.Model),
			BaseURL:     s.configStore.GetString(keyLLMBaseURL),
			APIKey:      s.configStore.GetString(keyLLMAPIKey),
			MaxTokens:   s.getInt(keyLLMMaxTokens, d.LLM.MaxTokens),
			Temperature: s.getFloat(keyLLMTemperature, d.LLM.Temperature),
		},
		VectorStore: domain.VectorStoreSettings{
			Backend:    s.getString(keyVectorBackend, d.VectorStore.Backend),
			URL:        s.getString(keyVectorURL, d.VectorStore.URL),
			APIKey:     s.configStore.GetString(keyVectorAPIKey),
			Collection: s.getString(keyVectorCollection, d.VectorStore.Collection),
		},
		Blob: domain.BlobSettings{
			Endpoint:       s.configStore.GetString(keyBlobEndpoint),
			Region:         s.getString(keyBlobRegion, d.Blob.Region),
			Bucket:         s.configStore.GetString(keyBlobBucket),
			AccessKey:      s.configStore.GetString(keyBlobAccessKey),
			SecretKey:      s.configStore.GetString(keyBlobSecretKey),
			ForcePathStyle: s.getBool(keyBlobPathStyle, d.Blob.ForcePathStyle),
		},
		Database: domain.DatabaseSettings{
			URL: s.configStore.GetString(keyDatabaseURL),
		},
		Chunker: domain.ChunkerSettings{
			Preset:       s.getString(keyChunkerPreset, d.Chunker.Preset),
			ChunkSize:    s.getInt(keyChunkerSize, d.Chunker.ChunkSize),
			ChunkOverlap: s.getIntAllowZero(keyChunkerOverlap, d.Chunker.ChunkOverlap),
		},
		Resilience: domain.ResilienceSettings{
			BreakerTimeout:     s.getDuration(keyBreakerTimeout, d.Resilience.BreakerTimeout),
			BreakerMinRequests: s.getInt(keyBreakerMinRequests, d.Resilience.BreakerMinRequests),
		},
	}

	s.applyEnv(settings)

	if err := settings.Chunker.ApplyChunkerPreset(); err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// applyEnv lets deployment environment variables win over the file.
// Provider API keys only apply to the matching provider.
func (s *SettingsService) applyEnv(st *domain.AppSettings) {
	set := func(dst *string, env string) {
		if v := strings.TrimSpace(s.getenv(env)); v != "" {
			*dst = v
		}
	}

	if st.Embedding.Provider == domain.AIProviderOpenAI {
		set(&st.Embedding.APIKey, EnvOpenAIAPIKey)
		set(&st.Embedding.Model, EnvOpenAIEmbeddingModel)
	}
	switch st.LLM.Provider {
	case domain.AIProviderOpenAI:
		set(&st.LLM.APIKey, EnvOpenAIAPIKey)
	case domain.AIProviderAnthropic:
		set(&st.LLM.APIKey, EnvAnthropicAPIKey)
		set(&st.LLM.Model, EnvAnthropicModel)
	}

	set(&st.VectorStore.URL, EnvQdrantURL)
	set(&st.VectorStore.APIKey, EnvQdrantAPIKey)
	set(&st.VectorStore.Collection, EnvQdrantCollection)

	set(&st.Blob.Endpoint, EnvMinioEndpoint)
	set(&st.Blob.AccessKey, EnvMinioAccessKey)
	set(&st.Blob.SecretKey, EnvMinioSecretKey)
	set(&st.Blob.Bucket, EnvMinioBucket)

	set(&st.Database.URL, EnvDatabaseURL)
}

// Set parses value for key and persists it.
// Unknown keys and unparsable values are rejected with ErrInvalidInput.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := knownKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	parsed, err := parseValue(kind, strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Unset removes key from the config file so the default or environment applies again.
func (s *SettingsService) Unset(key string) error {
	if _, ok := knownKeys[key]; !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	if err := s.configStore.Delete(key); err != nil {
		return fmt.Errorf("unset %s: %w", key, err)
	}
	return nil
}

func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

// Keys returns every settable key.
func (s *SettingsService) Keys() []string {
	return Keys()
}

// Keys returns every settable key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(knownKeys))
	for k := range knownKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func parseValue(kind valueKind, value string) (any, error) {
	switch kind {
	case kindInt:
		return strconv.Atoi(value)
	case kindFloat:
		return strconv.ParseFloat(value, 64)
	case kindBool:
		return strconv.ParseBool(value)
	case kindDuration:
		if _, err := time.ParseDuration(value); err != nil {
			return nil, err
		}
		return value, nil
	case kindProvider:
		p := domain.AIProvider(strings.ToLower(value))
		if !p.IsValid() {
			return nil, fmt.Errorf("unknown provider %q", value)
		}
		return p.String(), nil
	default:
		return value, nil
	}
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if val := s.configStore.GetInt(key); val != 0 {
		return val
	}
	return defaultVal
}

// getIntAllowZero treats an explicit 0 in the file as a value.
func (s *SettingsService) getIntAllowZero(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if f, ok := s.configStore.GetFloat(key); ok {
		return f
	}
	if f, err := strconv.ParseFloat(s.configStore.GetString(key), 64); err == nil {
		return f
	}
	return defaultVal
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	if d, err := time.ParseDuration(s.configStore.GetString(key)); err == nil && d > 0 {
		return d
	}
	return defaultVal
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(key))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
