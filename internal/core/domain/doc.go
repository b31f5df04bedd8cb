// Package domain defines the core business entities for docrag.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An uploaded source file and its ingestion status
//   - TextChunk: A window of a document's raw text with offsets
//   - ChunkPayload: The tagged payload persisted with every vector point
//   - Chat, Message, Source: Conversation records for retrieval-augmented chat
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
