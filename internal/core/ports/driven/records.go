package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// DocumentStore persists document records.
type DocumentStore interface {
	// CreateDocument inserts a new document.
	CreateDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID. Returns domain.ErrNotFound if absent.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns documents newest first. An empty ownerID lists all owners.
	ListDocuments(ctx context.Context, ownerID string) ([]domain.DocumentSummary, error)

	// SetRawText stores extracted text.
	SetRawText(ctx context.Context, id, text string) error

	// SetStatus moves the document along a lifecycle edge allowed by
	// domain.CanTransition. Other edges fail with domain.ErrInvalidTransition.
	SetStatus(ctx context.Context, id string, status domain.DocumentStatus) error

	// ResetStatus returns an indexed or failed document to pending.
	ResetStatus(ctx context.Context, id string) error

	// CompareAndSetStatus moves the document to `to` only if its current
	// status is one of `from`. Reports whether the swap happened.
	CompareAndSetStatus(ctx context.Context, id string, from []domain.DocumentStatus, to domain.DocumentStatus) (bool, error)

	// DeleteDocument removes the record. Returns domain.ErrNotFound if absent.
	DeleteDocument(ctx context.Context, id string) error
}

// ChatStore persists chats, messages and their sources.
type ChatStore interface {
	CreateChat(ctx context.Context, chat *domain.Chat) error

	// GetChat returns domain.ErrNotFound if absent.
	GetChat(ctx context.Context, id string) (*domain.Chat, error)

	// ListChats returns chats for ownerID ordered by last activity, newest first.
	ListChats(ctx context.Context, ownerID string) ([]domain.ChatSummary, error)

	// DeleteChat removes the chat with its messages and sources.
	DeleteChat(ctx context.Context, id string) error

	SetChatTitle(ctx context.Context, id, title string) error

	// TouchChat sets the chat's last activity time.
	TouchChat(ctx context.Context, id string, at time.Time) error

	// AppendMessage stores a message and its sources, assigning IDs.
	AppendMessage(ctx context.Context, msg *domain.Message) error

	// RecentMessages returns up to limit messages newest first, without sources.
	RecentMessages(ctx context.Context, chatID string, limit int) ([]domain.Message, error)

	// ListMessages returns every message oldest first, with sources.
	ListMessages(ctx context.Context, chatID string) ([]domain.Message, error)

	// ChatStats aggregates counts for ownerID.
	ChatStats(ctx context.Context, ownerID string) (*domain.ChatStats, error)
}

// DatabaseInspector reports record store diagnostics.
type DatabaseInspector interface {
	DatabaseInfo(ctx context.Context) (*domain.DatabaseInfo, error)
}
