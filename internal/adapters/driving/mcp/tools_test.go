package mcp

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

func newTestServer(t *testing.T, ports *Ports) *Server {
	t.Helper()
	if ports.Retrieval == nil {
		ports.Retrieval = &mockRetrievalService{}
	}
	if ports.OwnerID == "" {
		ports.OwnerID = "alice"
	}
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns retrieved chunks", func(t *testing.T) {
		retrieval := &mockRetrievalService{
			hits: []domain.SearchHit{{
				ID:    "p-1",
				Score: 0.91,
				Payload: domain.ChunkPayload{
					DocumentID: "doc-1",
					Filename:   "policy.pdf",
					ChunkIndex: 2,
					Text:       "Refunds are issued within 30 days.",
				},
			}},
		}
		server := newTestServer(t, &Ports{Retrieval: retrieval})

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "refund", Limit: 3, DocumentID: "doc-1"})

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		require.Len(t, output.Results, 1)
		assert.Equal(t, "doc-1", output.Results[0].DocumentID)
		assert.Equal(t, "policy.pdf", output.Results[0].Filename)
		assert.Equal(t, 2, output.Results[0].ChunkIndex)
		assert.Equal(t, 0.91, output.Results[0].Score)
		assert.Equal(t, "Refunds are issued within 30 days.", output.Results[0].Content)
		assert.Equal(t, 3, retrieval.lastLimit)
		assert.Equal(t, "doc-1", retrieval.lastDocID)
	})

	t.Run("default limit", func(t *testing.T) {
		retrieval := &mockRetrievalService{}
		server := newTestServer(t, &Ports{Retrieval: retrieval})

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "test"})

		require.NoError(t, err)
		assert.Equal(t, 0, output.Count)
		assert.Equal(t, domain.DefaultMaxSources, retrieval.lastLimit)
	})

	t.Run("returns error on retrieval failure", func(t *testing.T) {
		retrieval := &mockRetrievalService{err: fmt.Errorf("%w: qdrant down", domain.ErrVectorStore)}
		server := newTestServer(t, &Ports{Retrieval: retrieval})

		_, _, err := server.handleSearch(ctx, nil, SearchInput{Query: "test"})

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrVectorStore)
		assert.Contains(t, err.Error(), "search")
	})
}

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a chat when none given", func(t *testing.T) {
		chat := &mockChatService{
			createID: "chat-1",
			answer:   "Within 30 days.",
			sources:  []domain.Source{{Title: "policy.pdf", Score: 0.9}},
		}
		server := newTestServer(t, &Ports{Chat: chat})

		_, out, err := server.handleAsk(ctx, nil, AskInput{Question: "Refund window?"})

		require.NoError(t, err)
		assert.Equal(t, 1, chat.created)
		assert.Equal(t, "chat-1", out.ChatID)
		assert.Equal(t, "Within 30 days.", out.Answer)
		assert.Len(t, out.Sources, 1)
		assert.True(t, out.RetrievalUsed)
		assert.Equal(t, "alice", chat.lastReq.OwnerID)
		assert.Equal(t, domain.DefaultMaxSources, chat.lastReq.MaxSources)
		assert.Equal(t, domain.DefaultScoreThreshold, chat.lastReq.ScoreThreshold)
	})

	t.Run("continues an existing chat with overrides", func(t *testing.T) {
		chat := &mockChatService{answer: "ok"}
		server := newTestServer(t, &Ports{Chat: chat})

		_, out, err := server.handleAsk(ctx, nil, AskInput{
			Question:    "And digital goods?",
			ChatID:      "chat-9",
			MaxSources:  3,
			Threshold:   0.5,
			NoRetrieval: true,
		})

		require.NoError(t, err)
		assert.Zero(t, chat.created)
		assert.Equal(t, "chat-9", out.ChatID)
		assert.NotNil(t, out.Sources)
		assert.False(t, out.RetrievalUsed)
		assert.Equal(t, 3, chat.lastReq.MaxSources)
		assert.Equal(t, 0.5, chat.lastReq.ScoreThreshold)
	})

	t.Run("maps invalid input", func(t *testing.T) {
		chat := &mockChatService{err: fmt.Errorf("%w: message is required", domain.ErrInvalidInput)}
		server := newTestServer(t, &Ports{Chat: chat})

		_, _, err := server.handleAsk(ctx, nil, AskInput{ChatID: "chat-1"})

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Contains(t, err.Error(), "check the arguments")
	})
}

func TestServer_handleListDocuments(t *testing.T) {
	docs := &mockDocumentService{documents: []domain.DocumentSummary{{
		ID:          "doc-1",
		Name:        "notes.txt",
		ContentType: "text/plain",
		Size:        2048,
		Status:      domain.StatusIndexed,
		HasRawText:  true,
	}}}
	server := newTestServer(t, &Ports{Documents: docs})

	_, out, err := server.handleListDocuments(context.Background(), nil, ListDocumentsInput{})

	require.NoError(t, err)
	require.Equal(t, 1, out.Count)
	assert.Equal(t, "notes.txt", out.Documents[0].Name)
	assert.Equal(t, "2 KB", out.Documents[0].Size)
	assert.Equal(t, "indexed", out.Documents[0].Status)
	assert.True(t, out.Documents[0].HasText)
}

func TestServer_handleIndex(t *testing.T) {
	ctx := context.Background()
	report := &domain.IngestReport{DocumentID: "doc-1", PointsIndexed: 4}

	t.Run("extracts before indexing when text is missing", func(t *testing.T) {
		docs := &mockDocumentService{document: &domain.Document{ID: "doc-1", OwnerID: "alice"}}
		server := newTestServer(t, &Ports{Documents: docs, Ingest: &mockIngestService{report: report}})

		_, out, err := server.handleIndex(ctx, nil, IndexInput{DocumentID: "doc-1"})

		require.NoError(t, err)
		assert.Equal(t, 1, docs.extracted)
		assert.Equal(t, 4, out.PointsIndexed)
	})

	t.Run("skips extraction when text exists", func(t *testing.T) {
		docs := &mockDocumentService{document: &domain.Document{ID: "doc-1", OwnerID: "alice", RawText: "hello"}}
		server := newTestServer(t, &Ports{Documents: docs, Ingest: &mockIngestService{report: report}})

		_, _, err := server.handleIndex(ctx, nil, IndexInput{DocumentID: "doc-1"})

		require.NoError(t, err)
		assert.Zero(t, docs.extracted)
	})

	t.Run("other owner is not found", func(t *testing.T) {
		docs := &mockDocumentService{document: &domain.Document{ID: "doc-1", OwnerID: "bob", RawText: "x"}}
		server := newTestServer(t, &Ports{Documents: docs, Ingest: &mockIngestService{report: report}})

		_, _, err := server.handleIndex(ctx, nil, IndexInput{DocumentID: "doc-1"})

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("reports the failed step", func(t *testing.T) {
		docs := &mockDocumentService{document: &domain.Document{ID: "doc-1", OwnerID: "alice", RawText: "x"}}
		stepErr := &domain.StepError{DocumentID: "doc-1", Step: domain.StepEmbed, Err: domain.ErrEmbeddingService}
		server := newTestServer(t, &Ports{Documents: docs, Ingest: &mockIngestService{err: stepErr}})

		_, _, err := server.handleIndex(ctx, nil, IndexInput{DocumentID: "doc-1"})

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrEmbeddingService)
		assert.Contains(t, err.Error(), "embed step failed")
	})

	t.Run("requires a document id", func(t *testing.T) {
		server := newTestServer(t, &Ports{Documents: &mockDocumentService{}, Ingest: &mockIngestService{}})

		_, _, err := server.handleIndex(ctx, nil, IndexInput{})

		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	})
}
