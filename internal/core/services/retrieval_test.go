package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

func indexTwoDocuments(t *testing.T, h *harness) {
	t.Helper()
	h.seedDocument(t, "doc-a", "animals.txt", "zebra zebra zebra\n\nquokka quokka quokka")
	h.seedDocument(t, "doc-b", "more.txt", "quokka quokka quokka")
	for _, id := range []string{"doc-a", "doc-b"} {
		_, err := h.ingest.Index(context.Background(), id)
		require.NoError(t, err)
	}
}

func TestRetriever_Retrieve(t *testing.T) {
	h := newHarness(t, 25, 0)
	indexTwoDocuments(t, h)

	hits, err := h.retriever.Retrieve(context.Background(), "  quokka quokka quokka ", 10, 0.9, "")

	require.NoError(t, err)
	require.Len(t, hits, 2)
	for i := range hits {
		assert.GreaterOrEqual(t, hits[i].Score, 0.9)
		if i > 0 {
			assert.GreaterOrEqual(t, hits[i-1].Score, hits[i].Score)
		}
	}
}

func TestRetriever_DocumentFilter(t *testing.T) {
	h := newHarness(t, 25, 0)
	indexTwoDocuments(t, h)

	hits, err := h.retriever.Retrieve(context.Background(), "quokka quokka quokka", 10, 0.9, "doc-b")

	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "doc-b", hits[0].Payload.DocumentID)
}

func TestRetriever_DefaultLimit(t *testing.T) {
	h := newHarness(t, 25, 0)
	for _, id := range []string{"d1", "d2", "d3", "d4", "d5", "d6", "d7"} {
		h.seedDocument(t, id, id+".txt", "quokka")
		_, err := h.ingest.Index(context.Background(), id)
		require.NoError(t, err)
	}

	hits, err := h.retriever.Retrieve(context.Background(), "quokka", 0, 0, "")

	require.NoError(t, err)
	assert.Len(t, hits, domain.DefaultMaxSources)
}

func TestRetriever_Errors(t *testing.T) {
	t.Run("blank query", func(t *testing.T) {
		h := newHarness(t, 25, 0)
		_, err := h.retriever.Retrieve(context.Background(), " \n ", 5, 0, "")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Zero(t, h.embedding.callCount())
	})

	t.Run("embedding fails", func(t *testing.T) {
		h := newHarness(t, 25, 0)
		h.embedding.err = errUpstream
		_, err := h.retriever.Retrieve(context.Background(), "quokka", 5, 0, "")
		assert.ErrorIs(t, err, domain.ErrEmbeddingService)
		assert.ErrorIs(t, err, errUpstream)
	})

	t.Run("search fails", func(t *testing.T) {
		h := newHarness(t, 25, 0)
		h.index.searchErr = domain.ErrVectorStore
		_, err := h.retriever.Retrieve(context.Background(), "quokka", 5, 0, "")
		assert.ErrorIs(t, err, domain.ErrVectorStore)
	})
}

func TestRetriever_RetrieveResult(t *testing.T) {
	h := newHarness(t, 25, 0)
	h.index.searchErr = domain.ErrVectorStore

	res := h.retriever.retrieve(context.Background(), "quokka", 5, 0)

	assert.Error(t, res.Err)
	assert.Empty(t, res.Hits)
}
