package driving

import (
	"context"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// IngestService runs the chunk, embed and index pipeline for one document.
type IngestService interface {
	// Index ingests the document's raw text into the vector index.
	// On failure the document is left in the error state and the returned
	// error is a *domain.StepError naming the failed step.
	Index(ctx context.Context, documentID string) (*domain.IngestReport, error)
}
