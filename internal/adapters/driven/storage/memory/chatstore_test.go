package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

func TestChatStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewChatStore()

	chat := &domain.Chat{OwnerID: "alice"}
	require.NoError(t, s.CreateChat(ctx, chat))
	require.NotEmpty(t, chat.ID)

	require.NoError(t, s.SetChatTitle(ctx, chat.ID, "Budget"))
	got, err := s.GetChat(ctx, chat.ID)
	require.NoError(t, err)
	assert.Equal(t, "Budget", got.Title)

	require.NoError(t, s.DeleteChat(ctx, chat.ID))
	_, err = s.GetChat(ctx, chat.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, s.DeleteChat(ctx, chat.ID), domain.ErrNotFound)
}

func TestChatStore_MessagesAndSources(t *testing.T) {
	ctx := context.Background()
	s := NewChatStore()
	chat := &domain.Chat{OwnerID: "alice"}
	require.NoError(t, s.CreateChat(ctx, chat))

	for i, content := range []string{"q1", "a1", "q2", "a2"} {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleAssistant
		}
		msg := &domain.Message{ChatID: chat.ID, Role: role, Content: content}
		if role == domain.RoleAssistant {
			msg.Sources = []domain.Source{{Title: "doc.pdf", Snippet: "x...", Score: 0.9}}
		}
		require.NoError(t, s.AppendMessage(ctx, msg))
		require.NotEmpty(t, msg.ID)
	}

	recent, err := s.RecentMessages(ctx, chat.ID, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "a2", recent[0].Content)
	assert.Equal(t, "a1", recent[2].Content)
	assert.Nil(t, recent[0].Sources)

	all, err := s.ListMessages(ctx, chat.ID)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "q1", all[0].Content)
	require.Len(t, all[1].Sources, 1)
	assert.Equal(t, all[1].ID, all[1].Sources[0].MessageID)
	assert.NotEmpty(t, all[1].Sources[0].ID)

	err = s.AppendMessage(ctx, &domain.Message{ChatID: "missing", Role: domain.RoleUser, Content: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestChatStore_ListChats(t *testing.T) {
	ctx := context.Background()
	s := NewChatStore()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	older := &domain.Chat{OwnerID: "alice", CreatedAt: base}
	newer := &domain.Chat{OwnerID: "alice", CreatedAt: base.Add(time.Minute)}
	other := &domain.Chat{OwnerID: "bob", CreatedAt: base}
	for _, c := range []*domain.Chat{older, newer, other} {
		require.NoError(t, s.CreateChat(ctx, c))
	}
	require.NoError(t, s.AppendMessage(ctx, &domain.Message{ChatID: older.ID, Role: domain.RoleUser, Content: "first question"}))
	require.NoError(t, s.TouchChat(ctx, older.ID, base.Add(time.Hour)))

	list, err := s.ListChats(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, older.ID, list[0].ID)
	assert.Equal(t, 1, list[0].MessageCount)
	assert.Equal(t, "first question", list[0].FirstMessage)
	assert.Equal(t, newer.ID, list[1].ID)
}

func TestChatStore_Stats(t *testing.T) {
	ctx := context.Background()
	s := NewChatStore()
	chat := &domain.Chat{OwnerID: "alice"}
	require.NoError(t, s.CreateChat(ctx, chat))
	require.NoError(t, s.CreateChat(ctx, &domain.Chat{OwnerID: "alice"}))
	require.NoError(t, s.AppendMessage(ctx, &domain.Message{ChatID: chat.ID, Role: domain.RoleUser, Content: "q"}))
	require.NoError(t, s.AppendMessage(ctx, &domain.Message{ChatID: chat.ID, Role: domain.RoleAssistant, Content: "a"}))
	require.NoError(t, s.AppendMessage(ctx, &domain.Message{ChatID: chat.ID, Role: domain.RoleUser, Content: "q2"}))

	stats, err := s.ChatStats(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.ChatStats{TotalChats: 2, TotalMessages: 3, AssistantMessages: 1, UserQueries: 2}, *stats)

	empty, err := s.ChatStats(ctx, "nobody")
	require.NoError(t, err)
	assert.Zero(t, *empty)
}

func TestInspector(t *testing.T) {
	ctx := context.Background()
	docs := NewDocumentStore()
	chats := NewChatStore()
	require.NoError(t, docs.CreateDocument(ctx, newDoc("a", "alice", time.Time{})))
	indexed := newDoc("b", "alice", time.Time{})
	indexed.Status = domain.StatusIndexed
	require.NoError(t, docs.CreateDocument(ctx, indexed))
	require.NoError(t, chats.CreateChat(ctx, &domain.Chat{OwnerID: "alice"}))

	info, err := NewInspector(docs, chats).DatabaseInfo(ctx)

	require.NoError(t, err)
	assert.True(t, info.Connected)
	assert.Equal(t, "memory", info.Driver)
	assert.Equal(t, 2, info.Documents)
	assert.Equal(t, 1, info.IndexedDocuments)
	assert.Equal(t, 1, info.Chats)
}
