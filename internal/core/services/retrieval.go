package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/core/ports/driving"
	"github.com/custodia-labs/docrag/internal/logger"
)

var _ driving.RetrievalService = (*Retriever)(nil)

// Retriever embeds a query and searches the vector index.
type Retriever struct {
	embedder *Embedder
	vectors  driven.VectorIndex
}

func NewRetriever(embedder *Embedder, vectors driven.VectorIndex) *Retriever {
	return &Retriever{embedder: embedder, vectors: vectors}
}

// Retrieve returns up to limit hits scoring at least threshold, best first.
// documentID restricts the search to one document when non-empty.
func (r *Retriever) Retrieve(
	ctx context.Context, query string, limit int, threshold float64, documentID string,
) ([]domain.SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = domain.DefaultMaxSources
	}

	vec, err := r.embedder.EmbedOne(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := r.vectors.Search(ctx, domain.SearchQuery{
		Vector:         vec.Vector,
		Limit:          limit,
		ScoreThreshold: threshold,
		DocumentID:     documentID,
	})
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	logger.Debug("Retrieved %d hit(s) for %q (threshold %.2f)", len(hits), query, threshold)
	return hits, nil
}

// retrieve adapts Retrieve to the value-typed result the chat turn switches on.
func (r *Retriever) retrieve(ctx context.Context, query string, limit int, threshold float64) domain.RetrievalResult {
	hits, err := r.Retrieve(ctx, query, limit, threshold, "")
	if err != nil {
		return domain.RetrievalFailed(err)
	}
	return domain.RetrievalOK(hits)
}

// BuildContext renders hits as the context block of the system prompt.
func BuildContext(hits []domain.SearchHit) string {
	parts := make([]string, 0, len(hits))
	for _, h := range hits {
		name := h.Payload.Filename
		if name == "" {
			name = "Unknown"
		}
		parts = append(parts, fmt.Sprintf("[Document: %s]\n%s", name, h.Payload.Text))
	}
	return strings.Join(parts, "\n\n---\n\n")
}

// SourcesFromHits builds the citations stored with an assistant message.
func SourcesFromHits(hits []domain.SearchHit) []domain.Source {
	sources := make([]domain.Source, 0, len(hits))
	for i, h := range hits {
		title := h.Payload.Filename
		if title == "" {
			title = fmt.Sprintf("Document %d", i+1)
		}
		sources = append(sources, domain.Source{
			Title:      title,
			Snippet:    domain.Snippet(h.Payload.Text, domain.SourceSnippetLength),
			Score:      h.Score,
			DocumentID: h.Payload.DocumentID,
		})
	}
	return sources
}
