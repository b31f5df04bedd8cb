package driving

import (
	"context"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// ChatService manages chats and runs retrieval-augmented turns.
type ChatService interface {
	// CreateChat starts an empty chat for ownerID.
	CreateChat(ctx context.Context, ownerID, title string) (*domain.Chat, error)

	// GetChat returns the chat with its messages oldest first.
	GetChat(ctx context.Context, ownerID, chatID string) (*domain.ChatWithMessages, error)

	// ListChats returns the owner's chats, most recently active first.
	ListChats(ctx context.Context, ownerID string) ([]domain.ChatSummary, error)

	// DeleteChat removes a chat and its messages.
	DeleteChat(ctx context.Context, ownerID, chatID string) error

	// SendMessage runs one retrieval-augmented turn.
	SendMessage(ctx context.Context, req domain.SendMessageRequest) (*domain.TurnResult, error)

	// Stats aggregates chat activity for ownerID.
	Stats(ctx context.Context, ownerID string) (*domain.ChatStats, error)
}

// RetrievalService answers similarity queries over indexed documents.
type RetrievalService interface {
	// Retrieve embeds query and searches the vector index.
	Retrieve(ctx context.Context, query string, limit int, threshold float64, documentID string) ([]domain.SearchHit, error)
}
