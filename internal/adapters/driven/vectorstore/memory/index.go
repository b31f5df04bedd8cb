// Package memory implements an in-process vector index using brute-force
// cosine similarity. It backs tests and single-user setups without Qdrant.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/docrag/internal/adapters/driven/vectorstore"
	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is a thread-safe in-memory driven.VectorIndex.
type Index struct {
	mu         sync.RWMutex
	name       string
	dimensions int
	created    bool
	points     map[string]domain.VectorPoint
	order      []string

	now func() time.Time
}

// New creates an empty index. A zero dimensions value accepts any vector size
// fixed by the first upsert.
func New(name string, dimensions int) *Index {
	return &Index{
		name:       name,
		dimensions: dimensions,
		points:     make(map[string]domain.VectorPoint),
		now:        time.Now,
	}
}

// EnsureCollection marks the collection as created.
func (x *Index) EnsureCollection(_ context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.created = true
	return nil
}

// UpsertChunks stores one point per chunk. All vectors are checked before
// anything is written. On cancellation it returns the points stored by the
// batches that completed.
func (x *Index) UpsertChunks(ctx context.Context, documentID, filename string,
	chunks []domain.TextChunk, vectors [][]float32) (int, error) {
	points, err := vectorstore.BuildPoints(documentID, filename, chunks, vectors, x.now())
	if err != nil {
		return 0, err
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	dims := x.dimensions
	for _, p := range points {
		if dims == 0 {
			dims = len(p.Vector)
		}
		if len(p.Vector) != dims {
			return 0, fmt.Errorf("%w: vector has %d dims, want %d", domain.ErrShapeMismatch, len(p.Vector), dims)
		}
	}
	x.dimensions = dims
	x.created = true

	written := 0
	for _, batch := range vectorstore.Batches(points, vectorstore.UpsertBatchSize) {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		for _, p := range batch {
			if _, ok := x.points[p.ID]; !ok {
				x.order = append(x.order, p.ID)
			}
			x.points[p.ID] = p
		}
		written += len(batch)
	}
	return written, nil
}

// Search scores every point and returns the best hits above the threshold.
func (x *Index) Search(_ context.Context, q domain.SearchQuery) ([]domain.SearchHit, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	hits := []domain.SearchHit{}
	if q.Limit <= 0 {
		return hits, nil
	}
	for _, id := range x.order {
		p := x.points[id]
		if q.DocumentID != "" && p.Payload.DocumentID != q.DocumentID {
			continue
		}
		score := Cosine(p.Vector, q.Vector)
		if score < q.ScoreThreshold {
			continue
		}
		hits = append(hits, domain.SearchHit{ID: p.ID, Score: score, Payload: p.Payload})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > q.Limit {
		hits = hits[:q.Limit]
	}
	return vectorstore.ValidHits(hits), nil
}

// DeleteByDocument removes all points of the document.
func (x *Index) DeleteByDocument(_ context.Context, documentID string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	kept := x.order[:0]
	for _, id := range x.order {
		if x.points[id].Payload.DocumentID == documentID {
			delete(x.points, id)
			continue
		}
		kept = append(kept, id)
	}
	x.order = kept
	return nil
}

// CollectionInfo reports the number of stored points.
func (x *Index) CollectionInfo(_ context.Context) (*domain.CollectionInfo, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if !x.created {
		return nil, fmt.Errorf("collection %s: %w", x.name, domain.ErrNotFound)
	}
	n := int64(len(x.points))
	return &domain.CollectionInfo{
		Name:                x.name,
		PointsCount:         n,
		IndexedVectorsCount: n,
		Status:              "green",
	}, nil
}

// HealthCheck always succeeds.
func (x *Index) HealthCheck(_ context.Context) bool {
	return true
}

// Close releases resources.
func (x *Index) Close() error {
	return nil
}

// Cosine returns the cosine similarity of a and b, or 0 when either is zero
// or their lengths differ.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
