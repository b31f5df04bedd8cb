package vectorstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

func chunks(n int) []domain.TextChunk {
	out := make([]domain.TextChunk, n)
	for i := range out {
		out[i] = domain.TextChunk{Content: "c", StartIndex: i, EndIndex: i + 1, Index: i}
	}
	return out
}

func TestBuildPoints(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	points, err := BuildPoints("doc-1", "report.pdf", chunks(3), [][]float32{{1}, {2}, {3}}, now)
	require.NoError(t, err)
	require.Len(t, points, 3)

	seen := map[string]bool{}
	for i, p := range points {
		assert.False(t, seen[p.ID], "ids must be unique")
		seen[p.ID] = true
		assert.Equal(t, p.ID, p.Payload.ChunkID)
		assert.Equal(t, "doc-1", p.Payload.DocumentID)
		assert.Equal(t, "report.pdf", p.Payload.Filename)
		assert.Equal(t, domain.CategoryDocumentChunk, p.Payload.Category)
		assert.Equal(t, i, p.Payload.ChunkIndex)
		assert.Equal(t, now, p.Payload.CreatedAt)
	}
}

func TestBuildPoints_ShapeMismatch(t *testing.T) {
	_, err := BuildPoints("doc-1", "f", chunks(2), [][]float32{{1}}, time.Now())
	assert.ErrorIs(t, err, domain.ErrShapeMismatch)
}

func TestBuildPoints_FilenameFallback(t *testing.T) {
	points, err := BuildPoints("doc-9", "", chunks(1), [][]float32{{1}}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "document_doc-9", points[0].Payload.Filename)
}

func TestBatches(t *testing.T) {
	points, err := BuildPoints("d", "f", chunks(250), make([][]float32, 250), time.Now())
	require.NoError(t, err)

	batches := Batches(points, UpsertBatchSize)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 100)
	assert.Len(t, batches[1], 100)
	assert.Len(t, batches[2], 50)
	assert.Empty(t, Batches(nil, 10))
}

func TestValidHits(t *testing.T) {
	good := domain.SearchHit{ID: "a", Payload: domain.ChunkPayload{
		DocumentID: "d", Category: domain.CategoryDocumentChunk, CreatedAt: time.Now(), EndIndex: 1,
	}}
	bad := domain.SearchHit{ID: "b"}
	assert.Equal(t, []domain.SearchHit{good}, ValidHits([]domain.SearchHit{good, bad}))
}
