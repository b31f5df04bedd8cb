package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

type chatRow struct {
	ID        string `db:"id"`
	OwnerID   string `db:"owner_id"`
	Title     string `db:"title"`
	CreatedAt int64  `db:"created_at"`
	UpdatedAt int64  `db:"updated_at"`
}

type chatSummaryRow struct {
	ID           string `db:"id"`
	Title        string `db:"title"`
	MessageCount int    `db:"message_count"`
	FirstMessage string `db:"first_message"`
	CreatedAt    int64  `db:"created_at"`
	UpdatedAt    int64  `db:"updated_at"`
}

type messageRow struct {
	ID        string `db:"id"`
	ChatID    string `db:"chat_id"`
	Role      string `db:"role"`
	Content   string `db:"content"`
	CreatedAt int64  `db:"created_at"`
}

func (r messageRow) toDomain() domain.Message {
	return domain.Message{
		ID:        r.ID,
		ChatID:    r.ChatID,
		Role:      domain.MessageRole(r.Role),
		Content:   r.Content,
		CreatedAt: fromMillis(r.CreatedAt),
	}
}

type sourceRow struct {
	ID         string        `db:"id"`
	MessageID  string        `db:"message_id"`
	Title      string        `db:"title"`
	Snippet    string        `db:"snippet"`
	Page       sql.NullInt64 `db:"page"`
	Score      float64       `db:"score"`
	DocumentID string        `db:"document_id"`
}

// CreateChat inserts a chat, assigning an ID and timestamps when missing.
func (s *Store) CreateChat(ctx context.Context, chat *domain.Chat) error {
	if chat.ID == "" {
		chat.ID = uuid.NewString()
	}
	if chat.CreatedAt.IsZero() {
		chat.CreatedAt = s.now().UTC()
	}
	if chat.UpdatedAt.IsZero() {
		chat.UpdatedAt = chat.CreatedAt
	}

	_, err := s.db.ExecContext(ctx, s.rebind(
		"INSERT INTO chats (id, owner_id, title, created_at, updated_at) VALUES (?, ?, ?, ?, ?)"),
		chat.ID, chat.OwnerID, chat.Title, chat.CreatedAt.UnixMilli(), chat.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("inserting chat: %w", err)
	}
	return nil
}

// GetChat retrieves a chat by ID.
func (s *Store) GetChat(ctx context.Context, id string) (*domain.Chat, error) {
	var row chatRow
	if err := s.db.GetContext(ctx, &row, s.rebind(
		"SELECT id, owner_id, title, created_at, updated_at FROM chats WHERE id = ?"), id); err != nil {
		return nil, notFound(err, "chat", id)
	}
	return &domain.Chat{
		ID:        row.ID,
		OwnerID:   row.OwnerID,
		Title:     row.Title,
		CreatedAt: fromMillis(row.CreatedAt),
		UpdatedAt: fromMillis(row.UpdatedAt),
	}, nil
}

// ListChats returns the owner's chats by last activity.
func (s *Store) ListChats(ctx context.Context, ownerID string) ([]domain.ChatSummary, error) {
	var rows []chatSummaryRow
	err := s.db.SelectContext(ctx, &rows, s.rebind(`
		SELECT c.id, c.title, c.created_at, c.updated_at,
			(SELECT COUNT(*) FROM messages m WHERE m.chat_id = c.id) AS message_count,
			COALESCE((SELECT m.content FROM messages m
				WHERE m.chat_id = c.id AND m.role = 'user'
				ORDER BY m.position LIMIT 1), '') AS first_message
		FROM chats c
		WHERE c.owner_id = ?
		ORDER BY c.updated_at DESC, c.id`), ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing chats: %w", err)
	}

	out := make([]domain.ChatSummary, len(rows))
	for i, r := range rows {
		out[i] = domain.ChatSummary{
			ID:           r.ID,
			Title:        r.Title,
			MessageCount: r.MessageCount,
			FirstMessage: r.FirstMessage,
			CreatedAt:    fromMillis(r.CreatedAt),
			UpdatedAt:    fromMillis(r.UpdatedAt),
		}
	}
	return out, nil
}

// DeleteChat removes the chat; messages and sources cascade.
func (s *Store) DeleteChat(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM chats WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("deleting chat: %w", err)
	}
	return requireRow(res, "chat", id)
}

// SetChatTitle sets the title.
func (s *Store) SetChatTitle(ctx context.Context, id, title string) error {
	res, err := s.db.ExecContext(ctx, s.rebind("UPDATE chats SET title = ? WHERE id = ?"), title, id)
	if err != nil {
		return fmt.Errorf("setting chat title: %w", err)
	}
	return requireRow(res, "chat", id)
}

// TouchChat sets the last activity time.
func (s *Store) TouchChat(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, s.rebind("UPDATE chats SET updated_at = ? WHERE id = ?"), at.UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("touching chat: %w", err)
	}
	return requireRow(res, "chat", id)
}

// AppendMessage stores the message and its sources in one transaction.
// Messages get the next position in the chat so ordering never depends on
// clock resolution.
func (s *Store) AppendMessage(ctx context.Context, msg *domain.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = s.now().UTC()
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var position int64
	if err := tx.GetContext(ctx, &position, s.rebind(
		"SELECT COALESCE(MAX(position), 0) + 1 FROM messages WHERE chat_id = ?"), msg.ChatID); err != nil {
		return fmt.Errorf("next message position: %w", err)
	}

	if _, err := tx.ExecContext(ctx, s.rebind(`
		INSERT INTO messages (id, chat_id, position, role, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`),
		msg.ID, msg.ChatID, position, string(msg.Role), msg.Content, msg.CreatedAt.UnixMilli()); err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}

	for i := range msg.Sources {
		src := &msg.Sources[i]
		if src.ID == "" {
			src.ID = uuid.NewString()
		}
		src.MessageID = msg.ID

		var page sql.NullInt64
		if src.Page != nil {
			page = sql.NullInt64{Int64: int64(*src.Page), Valid: true}
		}
		if _, err := tx.ExecContext(ctx, s.rebind(`
			INSERT INTO sources (id, message_id, position, title, snippet, page, score, document_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
			src.ID, src.MessageID, i, src.Title, src.Snippet, page, src.Score, src.DocumentID); err != nil {
			return fmt.Errorf("inserting source: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}

// RecentMessages returns up to limit messages, newest first, without sources.
func (s *Store) RecentMessages(ctx context.Context, chatID string, limit int) ([]domain.Message, error) {
	var rows []messageRow
	if err := s.db.SelectContext(ctx, &rows, s.rebind(`
		SELECT id, chat_id, role, content, created_at FROM messages
		WHERE chat_id = ? ORDER BY position DESC LIMIT ?`), chatID, limit); err != nil {
		return nil, fmt.Errorf("recent messages: %w", err)
	}

	out := make([]domain.Message, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

// ListMessages returns all messages oldest first, with their sources.
func (s *Store) ListMessages(ctx context.Context, chatID string) ([]domain.Message, error) {
	var rows []messageRow
	if err := s.db.SelectContext(ctx, &rows, s.rebind(`
		SELECT id, chat_id, role, content, created_at FROM messages
		WHERE chat_id = ? ORDER BY position`), chatID); err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}

	var srcRows []sourceRow
	if err := s.db.SelectContext(ctx, &srcRows, s.rebind(`
		SELECT s.id, s.message_id, s.title, s.snippet, s.page, s.score, s.document_id
		FROM sources s JOIN messages m ON m.id = s.message_id
		WHERE m.chat_id = ?
		ORDER BY m.position, s.position`), chatID); err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}

	byMessage := make(map[string][]domain.Source)
	for _, r := range srcRows {
		src := domain.Source{
			ID:         r.ID,
			MessageID:  r.MessageID,
			Title:      r.Title,
			Snippet:    r.Snippet,
			Score:      r.Score,
			DocumentID: r.DocumentID,
		}
		if r.Page.Valid {
			page := int(r.Page.Int64)
			src.Page = &page
		}
		byMessage[r.MessageID] = append(byMessage[r.MessageID], src)
	}

	out := make([]domain.Message, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
		out[i].Sources = byMessage[r.ID]
	}
	return out, nil
}

// ChatStats aggregates the owner's chat activity.
func (s *Store) ChatStats(ctx context.Context, ownerID string) (*domain.ChatStats, error) {
	var stats struct {
		TotalChats        int `db:"total_chats"`
		TotalMessages     int `db:"total_messages"`
		AssistantMessages int `db:"assistant_messages"`
		UserQueries       int `db:"user_queries"`
	}
	err := s.db.GetContext(ctx, &stats, s.rebind(`
		SELECT
			(SELECT COUNT(*) FROM chats WHERE owner_id = ?) AS total_chats,
			COUNT(m.id) AS total_messages,
			COALESCE(SUM(CASE WHEN m.role = 'assistant' THEN 1 ELSE 0 END), 0) AS assistant_messages,
			COALESCE(SUM(CASE WHEN m.role = 'user' THEN 1 ELSE 0 END), 0) AS user_queries
		FROM messages m JOIN chats c ON c.id = m.chat_id
		WHERE c.owner_id = ?`), ownerID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("chat stats: %w", err)
	}
	return &domain.ChatStats{
		TotalChats:        stats.TotalChats,
		TotalMessages:     stats.TotalMessages,
		AssistantMessages: stats.AssistantMessages,
		UserQueries:       stats.UserQueries,
	}, nil
}
