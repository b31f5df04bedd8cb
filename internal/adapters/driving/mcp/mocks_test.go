package mcp

import (
	"context"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driving"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	hits      []domain.SearchHit
	err       error
	lastLimit int
	lastDocID string
}

func (m *mockRetrievalService) Retrieve(
	_ context.Context,
	_ string,
	limit int,
	_ float64,
	documentID string,
) ([]domain.SearchHit, error) {
	m.lastLimit = limit
	m.lastDocID = documentID
	return m.hits, m.err
}

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	created  int
	lastReq  domain.SendMessageRequest
	answer   string
	sources  []domain.Source
	err      error
	createID string
}

func (m *mockChatService) CreateChat(_ context.Context, ownerID, title string) (*domain.Chat, error) {
	m.created++
	return &domain.Chat{ID: m.createID, OwnerID: ownerID, Title: title}, m.err
}

func (m *mockChatService) GetChat(_ context.Context, _, _ string) (*domain.ChatWithMessages, error) {
	return nil, m.err
}

func (m *mockChatService) ListChats(_ context.Context, _ string) ([]domain.ChatSummary, error) {
	return nil, m.err
}

func (m *mockChatService) DeleteChat(_ context.Context, _, _ string) error {
	return m.err
}

func (m *mockChatService) SendMessage(_ context.Context, req domain.SendMessageRequest) (*domain.TurnResult, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &domain.TurnResult{
		AssistantMessage: domain.Message{Role: domain.RoleAssistant, Content: m.answer, Sources: m.sources},
		TotalSources:     len(m.sources),
		RetrievalUsed:    req.UseRetrieval,
	}, nil
}

func (m *mockChatService) Stats(_ context.Context, _ string) (*domain.ChatStats, error) {
	return &domain.ChatStats{}, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.DocumentSummary
	document  *domain.Document
	extracted int
	err       error
}

func (m *mockDocumentService) Upload(_ context.Context, _ driving.UploadRequest) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.document, nil
}

func (m *mockDocumentService) List(_ context.Context, _ string) ([]domain.DocumentSummary, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) ListAll(_ context.Context) ([]domain.DocumentSummary, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) ExtractText(_ context.Context, _ string) (*domain.Document, error) {
	m.extracted++
	return m.document, m.err
}

func (m *mockDocumentService) PreviewURL(_ context.Context, _ string) (string, error) {
	return "", m.err
}

func (m *mockDocumentService) DownloadURL(_ context.Context, _ string) (string, error) {
	return "", m.err
}

func (m *mockDocumentService) Reset(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, _ string) error {
	return m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	report *domain.IngestReport
	err    error
}

func (m *mockIngestService) Index(_ context.Context, _ string) (*domain.IngestReport, error) {
	return m.report, m.err
}
