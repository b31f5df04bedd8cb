// Package vectorstore holds helpers shared by the VectorIndex adapters.
package vectorstore

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/logger"
)

// UpsertBatchSize is the number of points written per request.
const UpsertBatchSize = 100

// BuildPoints pairs chunks with vectors and tags each with a fresh point id.
// Nothing is built when the lengths differ.
func BuildPoints(documentID, filename string, chunks []domain.TextChunk, vectors [][]float32, now time.Time) ([]domain.VectorPoint, error) {
	if len(chunks) != len(vectors) {
		return nil, fmt.Errorf("%w: %d chunks, %d vectors", domain.ErrShapeMismatch, len(chunks), len(vectors))
	}
	if filename == "" {
		filename = "document_" + documentID
	}

	points := make([]domain.VectorPoint, len(chunks))
	for i, chunk := range chunks {
		id := uuid.NewString()
		payload := domain.ChunkPayload{
			ChunkID:    id,
			Category:   domain.CategoryDocumentChunk,
			CreatedAt:  now.UTC(),
			Filename:   filename,
			DocumentID: documentID,
			ChunkIndex: chunk.Index,
			Text:       chunk.Content,
			StartIndex: chunk.StartIndex,
			EndIndex:   chunk.EndIndex,
		}
		if err := payload.Validate(); err != nil {
			return nil, err
		}
		points[i] = domain.VectorPoint{ID: id, Vector: vectors[i], Payload: payload}
	}
	return points, nil
}

// Batches splits points into consecutive groups of at most size.
func Batches(points []domain.VectorPoint, size int) [][]domain.VectorPoint {
	if size <= 0 {
		size = UpsertBatchSize
	}
	var out [][]domain.VectorPoint
	for start := 0; start < len(points); start += size {
		end := min(start+size, len(points))
		out = append(out, points[start:end])
	}
	return out
}

// ValidHits drops hits whose payload fails validation.
func ValidHits(hits []domain.SearchHit) []domain.SearchHit {
	out := make([]domain.SearchHit, 0, len(hits))
	for _, h := range hits {
		if err := h.Payload.Validate(); err != nil {
			logger.Warn("skipping point %s: %v", h.ID, err)
			continue
		}
		out = append(out, h)
	}
	return out
}
