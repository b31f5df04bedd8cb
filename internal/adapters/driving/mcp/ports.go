package mcp

import (
	"github.com/custodia-labs/docrag/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Retrieval answers similarity queries.
	Retrieval driving.RetrievalService

	// Chat runs retrieval-augmented turns. Optional.
	Chat driving.ChatService

	// Documents lists documents and extracts text. Optional.
	Documents driving.DocumentService

	// Ingest indexes documents. Optional.
	Ingest driving.IngestService

	// OwnerID scopes chats and document listings.
	OwnerID string
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	if (p.Chat != nil || p.Documents != nil) && p.OwnerID == "" {
		return ErrMissingOwner
	}
	return nil
}
