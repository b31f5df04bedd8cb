package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates no extractor handles a content type.
	ErrUnsupportedType = errors.New("unsupported type")

	// Validation errors.

	// ErrEmptyInput indicates text to chunk is empty or whitespace only.
	ErrEmptyInput = errors.New("empty input")

	// ErrNoValidInput indicates every text passed for embedding was blank.
	ErrNoValidInput = errors.New("no valid input texts")

	// ErrShapeMismatch indicates chunk and vector counts differ.
	ErrShapeMismatch = errors.New("chunk and vector counts differ")

	// ErrInvalidPayload indicates a vector point payload is missing required fields.
	ErrInvalidPayload = errors.New("invalid vector payload")

	// ErrFileTooLarge indicates an upload exceeds the size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrUnsupportedPreview indicates the content type cannot be previewed.
	ErrUnsupportedPreview = errors.New("preview not supported for content type")

	// Lifecycle errors.

	// ErrMissingRawText indicates the document has no extracted text to index.
	ErrMissingRawText = errors.New("document has no raw text")

	// ErrAlreadyIndexed indicates the document is already indexed.
	ErrAlreadyIndexed = errors.New("document already indexed")

	// ErrAlreadyExtracted indicates raw text has already been extracted.
	ErrAlreadyExtracted = errors.New("document text already extracted")

	// ErrIngestionInProgress indicates another run holds the document.
	ErrIngestionInProgress = errors.New("document is being processed")

	// ErrInvalidTransition indicates an illegal document status change.
	ErrInvalidTransition = errors.New("invalid status transition")

	// External service errors.

	// ErrEmbeddingService indicates the embedding provider failed.
	ErrEmbeddingService = errors.New("embedding service error")

	// ErrCompletionService indicates the chat completion provider failed.
	ErrCompletionService = errors.New("completion service error")

	// ErrVectorStore indicates the vector database failed.
	ErrVectorStore = errors.New("vector store error")

	// ErrBlobStore indicates the object store failed.
	ErrBlobStore = errors.New("blob store error")

	// ErrLLMUnavailable indicates the chat completion service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")
)

func invalidInput(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}
