package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// SearchInput is the input schema for the search_documents tool.
type SearchInput struct {
	Query      string  `json:"query" jsonschema:"the text to search for"`
	Limit      int     `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 5)"`
	Threshold  float64 `json:"threshold,omitempty" jsonschema:"minimum similarity score between 0 and 1"`
	DocumentID string  `json:"document_id,omitempty" jsonschema:"restrict results to one document"`
}

// SearchOutput is the output schema for the search_documents tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single retrieved chunk.
type SearchResultOutput struct {
	DocumentID string  `json:"document_id"`
	Filename   string  `json:"filename"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"score"`
	Content    string  `json:"content"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question    string  `json:"question" jsonschema:"the question to answer from the documents"`
	ChatID      string  `json:"chat_id,omitempty" jsonschema:"continue an existing chat; a new one is created when empty"`
	MaxSources  int     `json:"max_sources,omitempty" jsonschema:"maximum sources to retrieve (1-10, default 5)"`
	Threshold   float64 `json:"threshold,omitempty" jsonschema:"minimum similarity score (default 0.7)"`
	NoRetrieval bool    `json:"no_retrieval,omitempty" jsonschema:"answer without document context"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	ChatID        string          `json:"chat_id"`
	Answer        string          `json:"answer"`
	Sources       []domain.Source `json:"sources"`
	RetrievalUsed bool            `json:"retrieval_used"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct{}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput is a document listing row.
type DocumentOutput struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        string `json:"size"`
	Status      string `json:"status"`
	HasText     bool   `json:"has_text"`
}

// IndexInput is the input schema for the index_document tool.
type IndexInput struct {
	DocumentID string `json:"document_id" jsonschema:"the document to extract and index"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_documents",
		Description: "Find the document chunks most similar to a query",
	}, s.handleSearch)

	if s.ports.Chat != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask",
			Description: "Answer a question using the indexed documents as context",
		}, s.handleAsk)
	}

	if s.ports.Documents != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_documents",
			Description: "List uploaded documents and their ingestion status",
		}, s.handleListDocuments)
	}

	if s.ports.Documents != nil && s.ports.Ingest != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "index_document",
			Description: "Extract text from an uploaded document if needed, then chunk, embed and index it",
		}, s.handleIndex)
	}
}

// handleSearch handles the search_documents tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = domain.DefaultMaxSources
	}

	hits, err := s.ports.Retrieval.Retrieve(ctx, input.Query, limit, input.Threshold, input.DocumentID)
	if err != nil {
		return nil, SearchOutput{}, toolError("search", err)
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(hits)),
		Count:   len(hits),
	}

	for i := range hits {
		output.Results[i] = SearchResultOutput{
			DocumentID: hits[i].Payload.DocumentID,
			Filename:   hits[i].Payload.Filename,
			ChunkIndex: hits[i].Payload.ChunkIndex,
			Score:      hits[i].Score,
			Content:    hits[i].Payload.Text,
		}
	}

	return nil, output, nil
}

// handleAsk runs one chat turn.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	chatID := input.ChatID
	if chatID == "" {
		chat, err := s.ports.Chat.CreateChat(ctx, s.ports.OwnerID, "")
		if err != nil {
			return nil, AskOutput{}, toolError("ask", err)
		}
		chatID = chat.ID
	}

	req := domain.NewSendMessageRequest(chatID, s.ports.OwnerID, input.Question)
	req.UseRetrieval = !input.NoRetrieval
	if input.MaxSources > 0 {
		req.MaxSources = input.MaxSources
	}
	if input.Threshold > 0 {
		req.ScoreThreshold = input.Threshold
	}

	res, err := s.ports.Chat.SendMessage(ctx, req)
	if err != nil {
		return nil, AskOutput{}, toolError("ask", err)
	}

	sources := res.AssistantMessage.Sources
	if sources == nil {
		sources = []domain.Source{}
	}
	return nil, AskOutput{
		ChatID:        chatID,
		Answer:        res.AssistantMessage.Content,
		Sources:       sources,
		RetrievalUsed: res.RetrievalUsed,
	}, nil
}

// handleListDocuments lists the owner's documents.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	docs, err := s.ports.Documents.List(ctx, s.ports.OwnerID)
	if err != nil {
		return nil, ListDocumentsOutput{}, toolError("list documents", err)
	}

	output := ListDocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i := range docs {
		output.Documents[i] = DocumentOutput{
			ID:          docs[i].ID,
			Name:        docs[i].Name,
			ContentType: docs[i].ContentType,
			Size:        domain.FormatFileSize(docs[i].Size),
			Status:      docs[i].Status.String(),
			HasText:     docs[i].HasRawText,
		}
	}
	return nil, output, nil
}

// handleIndex extracts text when missing and runs the ingestion pipeline.
func (s *Server) handleIndex(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IndexInput,
) (*mcp.CallToolResult, domain.IngestReport, error) {
	if input.DocumentID == "" {
		return nil, domain.IngestReport{}, toolError("index", domain.ErrInvalidInput)
	}

	doc, err := s.ports.Documents.Get(ctx, input.DocumentID)
	if err != nil {
		return nil, domain.IngestReport{}, toolError("index", err)
	}
	if doc.OwnerID != s.ports.OwnerID {
		return nil, domain.IngestReport{}, toolError("index", domain.ErrNotFound)
	}
	if !doc.HasRawText() {
		if _, err := s.ports.Documents.ExtractText(ctx, doc.ID); err != nil &&
			!errors.Is(err, domain.ErrAlreadyExtracted) {
			return nil, domain.IngestReport{}, toolError("extract", err)
		}
	}

	report, err := s.ports.Ingest.Index(ctx, doc.ID)
	if err != nil {
		return nil, domain.IngestReport{}, toolError("index", err)
	}
	return nil, *report, nil
}
