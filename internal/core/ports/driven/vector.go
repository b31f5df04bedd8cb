package driven

import (
	"context"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// VectorIndex owns one named collection in a vector store.
// Every point carries a domain.ChunkPayload; the payload's document id is
// the only key used for filtering and deletion.
type VectorIndex interface {
	// EnsureCollection creates the collection if it does not exist.
	// Calling it again is a no-op.
	EnsureCollection(ctx context.Context) error

	// UpsertChunks stores one point per chunk under documentID.
	// Returns domain.ErrShapeMismatch without writing anything when
	// len(chunks) != len(vectors). Returns the number of points written.
	UpsertChunks(ctx context.Context, documentID, filename string,
		chunks []domain.TextChunk, vectors [][]float32) (int, error)

	// Search returns at most q.Limit hits scoring at least q.ScoreThreshold,
	// best first. No hits is an empty slice, not an error.
	Search(ctx context.Context, q domain.SearchQuery) ([]domain.SearchHit, error)

	// DeleteByDocument removes every point of documentID. Idempotent.
	DeleteByDocument(ctx context.Context, documentID string) error

	// CollectionInfo returns point counts and status.
	CollectionInfo(ctx context.Context) (*domain.CollectionInfo, error)

	// HealthCheck reports whether the store answers. It never fails.
	HealthCheck(ctx context.Context) bool

	// Close releases resources.
	Close() error
}
