package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

var _ driven.ChatStore = (*ChatStore)(nil)

// ChatStore keeps chats and their messages in insertion order.
type ChatStore struct {
	mu       sync.RWMutex
	chats    map[string]domain.Chat
	messages map[string][]domain.Message
	now      func() time.Time
}

func NewChatStore() *ChatStore {
	return &ChatStore{
		chats:    make(map[string]domain.Chat),
		messages: make(map[string][]domain.Message),
		now:      time.Now,
	}
}

func (s *ChatStore) CreateChat(_ context.Context, chat *domain.Chat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if chat.ID == "" {
		chat.ID = uuid.NewString()
	}
	if _, exists := s.chats[chat.ID]; exists {
		return fmt.Errorf("chat %s: %w", chat.ID, domain.ErrAlreadyExists)
	}
	if chat.CreatedAt.IsZero() {
		chat.CreatedAt = s.now().UTC()
	}
	if chat.UpdatedAt.IsZero() {
		chat.UpdatedAt = chat.CreatedAt
	}
	s.chats[chat.ID] = *chat
	return nil
}

func (s *ChatStore) GetChat(_ context.Context, id string) (*domain.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.chats[id]
	if !ok {
		return nil, fmt.Errorf("chat %s: %w", id, domain.ErrNotFound)
	}
	return &c, nil
}

func (s *ChatStore) ListChats(_ context.Context, ownerID string) ([]domain.ChatSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.ChatSummary, 0)
	for _, c := range s.chats {
		if c.OwnerID != ownerID {
			continue
		}
		msgs := s.messages[c.ID]
		var first string
		for _, m := range msgs {
			if m.Role == domain.RoleUser {
				first = m.Content
				break
			}
		}
		out = append(out, domain.ChatSummary{
			ID:           c.ID,
			Title:        c.Title,
			MessageCount: len(msgs),
			FirstMessage: first,
			CreatedAt:    c.CreatedAt,
			UpdatedAt:    c.UpdatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *ChatStore) DeleteChat(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chats[id]; !ok {
		return fmt.Errorf("chat %s: %w", id, domain.ErrNotFound)
	}
	delete(s.chats, id)
	delete(s.messages, id)
	return nil
}

func (s *ChatStore) SetChatTitle(_ context.Context, id, title string) error {
	return s.update(id, func(c *domain.Chat) { c.Title = title })
}

func (s *ChatStore) TouchChat(_ context.Context, id string, at time.Time) error {
	return s.update(id, func(c *domain.Chat) { c.UpdatedAt = at })
}

// AppendMessage stores a copy of msg; later changes to the caller's slices do not leak in.
func (s *ChatStore) AppendMessage(_ context.Context, msg *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.chats[msg.ChatID]; !ok {
		return fmt.Errorf("chat %s: %w", msg.ChatID, domain.ErrNotFound)
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = s.now().UTC()
	}
	for i := range msg.Sources {
		if msg.Sources[i].ID == "" {
			msg.Sources[i].ID = uuid.NewString()
		}
		msg.Sources[i].MessageID = msg.ID
	}

	stored := *msg
	stored.Sources = append([]domain.Source(nil), msg.Sources...)
	s.messages[msg.ChatID] = append(s.messages[msg.ChatID], stored)
	return nil
}

// RecentMessages returns up to limit messages newest first, without sources.
func (s *ChatStore) RecentMessages(_ context.Context, chatID string, limit int) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.messages[chatID]
	n := min(limit, len(msgs))
	out := make([]domain.Message, 0, n)
	for i := len(msgs) - 1; i >= 0 && len(out) < n; i-- {
		m := msgs[i]
		m.Sources = nil
		out = append(out, m)
	}
	return out, nil
}

func (s *ChatStore) ListMessages(_ context.Context, chatID string) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.messages[chatID]
	out := make([]domain.Message, len(msgs))
	for i, m := range msgs {
		m.Sources = append([]domain.Source{}, m.Sources...)
		out[i] = m
	}
	return out, nil
}

func (s *ChatStore) ChatStats(_ context.Context, ownerID string) (*domain.ChatStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &domain.ChatStats{}
	for id, c := range s.chats {
		if c.OwnerID != ownerID {
			continue
		}
		stats.TotalChats++
		for _, m := range s.messages[id] {
			stats.TotalMessages++
			switch m.Role {
			case domain.RoleUser:
				stats.UserQueries++
			case domain.RoleAssistant:
				stats.AssistantMessages++
			}
		}
	}
	return stats, nil
}

func (s *ChatStore) update(id string, fn func(*domain.Chat)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chats[id]
	if !ok {
		return fmt.Errorf("chat %s: %w", id, domain.ErrNotFound)
	}
	fn(&c)
	s.chats[id] = c
	return nil
}

func (s *ChatStore) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chats)
}
