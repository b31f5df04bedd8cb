// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DocumentStore, ChatStore: Record persistence (SQLite or Postgres)
//   - BlobStore: Original file storage (S3-compatible)
//   - ConfigStore: Application configuration
//   - TextExtractor: Raw text extraction per content type
//
// # AI Interfaces
//
// These may be nil. Services that need them return the matching
// Err*Unavailable error instead of panicking:
//
//   - EmbeddingService: Generates vector embeddings (OpenAI, Ollama)
//   - VectorIndex: Vector storage and similarity search (Qdrant, in-memory)
//   - LLMService: Chat completion (Anthropic, OpenAI, Ollama)
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or extractor package
package driven
