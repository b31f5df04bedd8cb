// Package qdrant implements the vector index over Qdrant's REST API.
package qdrant

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/custodia-labs/docrag/internal/adapters/driven/restclient"
	"github.com/custodia-labs/docrag/internal/adapters/driven/vectorstore"
	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Default configuration values.
const (
	DefaultURL        = "http://localhost:6333"
	DefaultCollection = "documents"
	DefaultTimeout    = 30 * time.Second

	// SparseVectorName is the sparse vector slot created alongside the dense one.
	SparseVectorName = "text-sparse-vector"
)

// Config holds configuration for the Qdrant index.
type Config struct {
	// URL is the Qdrant REST base URL (default: http://localhost:6333).
	URL string

	// APIKey is sent as the api-key header when set.
	APIKey string

	// Collection is the collection name (default: documents).
	Collection string

	// VectorName names the dense vector; the embedding model id.
	VectorName string

	// Dimensions is the dense vector size.
	Dimensions int

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration
}

// Index is a Qdrant-backed driven.VectorIndex.
type Index struct {
	api        *restclient.Client
	collection string
	vectorName string
	dimensions int

	mu      sync.Mutex
	ensured bool

	now func() time.Time
}

// New creates a Qdrant index. No request is made until first use.
func New(cfg Config) (*Index, error) {
	if cfg.VectorName == "" {
		return nil, fmt.Errorf("%w: qdrant vector name is required", domain.ErrInvalidInput)
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = domain.EmbeddingDimensions(cfg.VectorName)
	}
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	var header map[string]string
	if cfg.APIKey != "" {
		header = map[string]string{"api-key": cfg.APIKey}
	}

	return &Index{
		api:        restclient.New(restclient.Config{BaseURL: cfg.URL, Timeout: cfg.Timeout, Header: header}),
		collection: cfg.Collection,
		vectorName: cfg.VectorName,
		dimensions: cfg.Dimensions,
		now:        time.Now,
	}, nil
}

type hnswConfig struct {
	M           int `json:"m"`
	EfConstruct int `json:"ef_construct"`
	PayloadM    int `json:"payload_m"`
}

type vectorParams struct {
	Size     int        `json:"size"`
	Distance string     `json:"distance"`
	HNSW     hnswConfig `json:"hnsw_config"`
	Datatype string     `json:"datatype"`
	OnDisk   bool       `json:"on_disk"`
}

type createCollectionRequest struct {
	Vectors                map[string]vectorParams `json:"vectors"`
	SparseVectors          map[string]struct{}     `json:"sparse_vectors"`
	OnDiskPayload          bool                    `json:"on_disk_payload"`
	ShardNumber            int                     `json:"shard_number"`
	ReplicationFactor      int                     `json:"replication_factor"`
	WriteConsistencyFactor int                     `json:"write_consistency_factor"`
}

type point struct {
	ID      string               `json:"id"`
	Vector  map[string][]float32 `json:"vector"`
	Payload domain.ChunkPayload  `json:"payload"`
}

type upsertRequest struct {
	Points []point `json:"points"`
}

type matchValue struct {
	Value string `json:"value"`
}

type fieldCondition struct {
	Key   string     `json:"key"`
	Match matchValue `json:"match"`
}

type filter struct {
	Must []fieldCondition `json:"must"`
}

type namedVector struct {
	Name   string    `json:"name"`
	Vector []float32 `json:"vector"`
}

type searchRequest struct {
	Vector         namedVector `json:"vector"`
	Limit          int         `json:"limit"`
	ScoreThreshold *float64    `json:"score_threshold,omitempty"`
	Filter         *filter     `json:"filter,omitempty"`
	WithPayload    bool        `json:"with_payload"`
}

type scoredPoint struct {
	ID      any                 `json:"id"`
	Score   float64             `json:"score"`
	Payload domain.ChunkPayload `json:"payload"`
}

type deleteRequest struct {
	Filter filter `json:"filter"`
}

type collectionInfoResult struct {
	Status              string `json:"status"`
	PointsCount         int64  `json:"points_count"`
	IndexedVectorsCount int64  `json:"indexed_vectors_count"`
}

type envelope[T any] struct {
	Result T       `json:"result"`
	Status any     `json:"status"`
	Time   float64 `json:"time"`
}

func docFilter(documentID string) filter {
	return filter{Must: []fieldCondition{{Key: "doc_id", Match: matchValue{Value: documentID}}}}
}

func (x *Index) collectionPath(suffix string) string {
	return "/collections/" + url.PathEscape(x.collection) + suffix
}

// do sends one request and decodes the answer into out when non-nil.
// The returned status is 0 when Qdrant could not be reached.
func (x *Index) do(ctx context.Context, method, path string, body, out any) (int, error) {
	if err := x.api.Do(ctx, method, path, body, out); err != nil {
		return restclient.StatusCode(err), fmt.Errorf("%w: qdrant: %w", domain.ErrVectorStore, err)
	}
	return http.StatusOK, nil
}

// EnsureCollection creates the collection on first call if Qdrant does not have it.
func (x *Index) EnsureCollection(ctx context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.ensured {
		return nil
	}

	var exists envelope[struct {
		Exists bool `json:"exists"`
	}]
	if _, err := x.do(ctx, http.MethodGet, x.collectionPath("/exists"), nil, &exists); err != nil {
		return fmt.Errorf("check collection: %w", err)
	}

	if !exists.Result.Exists {
		req := createCollectionRequest{
			Vectors: map[string]vectorParams{
				x.vectorName: {
					Size:     x.dimensions,
					Distance: "Cosine",
					HNSW:     hnswConfig{M: 24, EfConstruct: 256, PayloadM: 24},
					Datatype: "float32",
					OnDisk:   false,
				},
			},
			SparseVectors:          map[string]struct{}{SparseVectorName: {}},
			OnDiskPayload:          true,
			ShardNumber:            1,
			ReplicationFactor:      1,
			WriteConsistencyFactor: 1,
		}
		if _, err := x.do(ctx, http.MethodPut, x.collectionPath(""), req, nil); err != nil {
			return fmt.Errorf("create collection: %w", err)
		}
		logger.Info("created qdrant collection %s (%s, %d dims)", x.collection, x.vectorName, x.dimensions)
	}

	x.ensured = true
	return nil
}

// UpsertChunks writes one point per chunk in acknowledged batches.
func (x *Index) UpsertChunks(ctx context.Context, documentID, filename string,
	chunks []domain.TextChunk, vectors [][]float32) (int, error) {
	points, err := vectorstore.BuildPoints(documentID, filename, chunks, vectors, x.now())
	if err != nil {
		return 0, err
	}
	for _, p := range points {
		if len(p.Vector) != x.dimensions {
			return 0, fmt.Errorf("%w: vector has %d dims, collection wants %d",
				domain.ErrShapeMismatch, len(p.Vector), x.dimensions)
		}
	}

	written := 0
	for _, batch := range vectorstore.Batches(points, vectorstore.UpsertBatchSize) {
		req := upsertRequest{Points: make([]point, len(batch))}
		for i, p := range batch {
			req.Points[i] = point{
				ID:      p.ID,
				Vector:  map[string][]float32{x.vectorName: p.Vector},
				Payload: p.Payload,
			}
		}
		if _, err := x.do(ctx, http.MethodPut, x.collectionPath("/points?wait=true"), req, nil); err != nil {
			return written, fmt.Errorf("upsert batch at %d: %w", written, err)
		}
		written += len(batch)
	}
	return written, nil
}

// Search runs a cosine similarity search against the named dense vector.
func (x *Index) Search(ctx context.Context, q domain.SearchQuery) ([]domain.SearchHit, error) {
	if q.Limit <= 0 {
		return []domain.SearchHit{}, nil
	}
	req := searchRequest{
		Vector:      namedVector{Name: x.vectorName, Vector: q.Vector},
		Limit:       q.Limit,
		WithPayload: true,
	}
	if q.ScoreThreshold > 0 {
		threshold := q.ScoreThreshold
		req.ScoreThreshold = &threshold
	}
	if q.DocumentID != "" {
		f := docFilter(q.DocumentID)
		req.Filter = &f
	}

	var resp envelope[[]scoredPoint]
	if _, err := x.do(ctx, http.MethodPost, x.collectionPath("/points/search"), req, &resp); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	hits := make([]domain.SearchHit, 0, len(resp.Result))
	for _, sp := range resp.Result {
		if sp.Score < q.ScoreThreshold {
			continue
		}
		hits = append(hits, domain.SearchHit{ID: fmt.Sprint(sp.ID), Score: sp.Score, Payload: sp.Payload})
	}
	return vectorstore.ValidHits(hits), nil
}

// DeleteByDocument removes all points with the given doc_id.
func (x *Index) DeleteByDocument(ctx context.Context, documentID string) error {
	status, err := x.do(ctx, http.MethodPost, x.collectionPath("/points/delete?wait=true"),
		deleteRequest{Filter: docFilter(documentID)}, nil)
	if status == http.StatusNotFound {
		// No collection means no points.
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete points of %s: %w", documentID, err)
	}
	return nil
}

// CollectionInfo reports point counts and optimizer status.
func (x *Index) CollectionInfo(ctx context.Context) (*domain.CollectionInfo, error) {
	var resp envelope[collectionInfoResult]
	status, err := x.do(ctx, http.MethodGet, x.collectionPath(""), nil, &resp)
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("collection %s: %w", x.collection, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("collection info: %w", err)
	}
	return &domain.CollectionInfo{
		Name:                x.collection,
		PointsCount:         resp.Result.PointsCount,
		IndexedVectorsCount: resp.Result.IndexedVectorsCount,
		Status:              resp.Result.Status,
	}, nil
}

// HealthCheck lists collections and reports whether Qdrant answered.
func (x *Index) HealthCheck(ctx context.Context) bool {
	if _, err := x.do(ctx, http.MethodGet, "/collections", nil, nil); err != nil {
		logger.Debug("qdrant health check failed: %v", err)
		return false
	}
	return true
}

// Close releases resources.
func (x *Index) Close() error {
	x.api.CloseIdleConnections()
	return nil
}
