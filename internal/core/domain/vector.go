package domain

import (
	"fmt"
	"time"
)

// CategoryDocumentChunk tags points that hold document chunks.
const CategoryDocumentChunk = "document_chunk"

// ChunkPayload is the payload stored with every vector point.
type ChunkPayload struct {
	ChunkID    string    `json:"chunk_id"`
	Category   string    `json:"category"`
	CreatedAt  time.Time `json:"created_at"`
	Filename   string    `json:"filename"`
	DocumentID string    `json:"doc_id"`
	ChunkIndex int       `json:"chunk_idx"`
	Text       string    `json:"text_content"`
	StartIndex int       `json:"start_idx"`
	EndIndex   int       `json:"end_idx"`
}

// Validate checks the required payload fields.
func (p *ChunkPayload) Validate() error {
	switch {
	case p.DocumentID == "":
		return fmt.Errorf("%w: payload missing doc_id", ErrInvalidPayload)
	case p.Category == "":
		return fmt.Errorf("%w: payload missing category", ErrInvalidPayload)
	case p.ChunkIndex < 0:
		return fmt.Errorf("%w: negative chunk_idx %d", ErrInvalidPayload, p.ChunkIndex)
	case p.StartIndex < 0 || p.EndIndex < p.StartIndex:
		return fmt.Errorf("%w: bad offsets [%d,%d)", ErrInvalidPayload, p.StartIndex, p.EndIndex)
	case p.CreatedAt.IsZero():
		return fmt.Errorf("%w: payload missing created_at", ErrInvalidPayload)
	}
	return nil
}

// VectorPoint is the persisted unit of the vector index.
type VectorPoint struct {
	ID      string
	Vector  []float32
	Payload ChunkPayload
}

// SearchQuery parameters a similarity search.
type SearchQuery struct {
	Vector         []float32
	Limit          int
	ScoreThreshold float64

	// DocumentID restricts results to one document when set.
	DocumentID string
}

// SearchHit is one similarity search result.
type SearchHit struct {
	ID      string
	Score   float64
	Payload ChunkPayload
}

// CollectionInfo is the diagnostic view of a vector collection.
type CollectionInfo struct {
	Name                string `json:"name"`
	PointsCount         int64  `json:"pointsCount"`
	IndexedVectorsCount int64  `json:"indexedVectorsCount"`
	Status              string `json:"status"`
}

// RetrievalResult is the outcome of the retrieval step of a chat turn.
// Exactly one of Hits or Err is meaningful: Err != nil means retrieval failed.
type RetrievalResult struct {
	Hits []SearchHit
	Err  error
}

// Failed reports whether retrieval failed.
func (r RetrievalResult) Failed() bool {
	return r.Err != nil
}

// RetrievalOK wraps successful hits.
func RetrievalOK(hits []SearchHit) RetrievalResult {
	return RetrievalResult{Hits: hits}
}

// RetrievalFailed wraps a retrieval error.
func RetrievalFailed(err error) RetrievalResult {
	return RetrievalResult{Err: err}
}
