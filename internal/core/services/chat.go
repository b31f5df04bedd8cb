package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/core/ports/driving"
	"github.com/custodia-labs/docrag/internal/logger"
	"github.com/custodia-labs/docrag/internal/metrics"
)

var _ driving.ChatService = (*ChatService)(nil)

// Retrieval result labels for metrics.
const (
	retrievalHits    = "hits"
	retrievalEmpty   = "empty"
	retrievalFailed  = "failed"
	retrievalSkipped = "skipped"
)

// ChatConfig holds completion parameters for chat turns.
type ChatConfig struct {
	MaxTokens   int
	Temperature float64
}

// DefaultChatConfig returns 4000 tokens at temperature 0.7.
func DefaultChatConfig() ChatConfig {
	return ChatConfig{MaxTokens: 4000, Temperature: 0.7}
}

// ChatService manages chats and assembles retrieval-augmented answers.
type ChatService struct {
	chats     driven.ChatStore
	retriever *Retriever
	llm       driven.LLMService
	prompts   driven.PromptStore
	cfg       ChatConfig
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewChatService wires the orchestrator. A MaxTokens of zero or less takes
// the default; a zero Temperature is passed through as given.
func NewChatService(
	chats driven.ChatStore,
	retriever *Retriever,
	llm driven.LLMService,
	prompts driven.PromptStore,
	cfg ChatConfig,
	m *metrics.Metrics,
) *ChatService {
	def := DefaultChatConfig()
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	return &ChatService{
		chats:     chats,
		retriever: retriever,
		llm:       llm,
		prompts:   prompts,
		cfg:       cfg,
		metrics:   m,
		now:       time.Now,
	}
}

// CreateChat starts an empty chat owned by ownerID.
func (s *ChatService) CreateChat(ctx context.Context, ownerID, title string) (*domain.Chat, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner is required", domain.ErrInvalidInput)
	}
	now := s.now().UTC()
	chat := &domain.Chat{
		OwnerID:   ownerID,
		Title:     strings.TrimSpace(title),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.chats.CreateChat(ctx, chat); err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}
	return chat, nil
}

// GetChat returns the chat with its messages in creation order. Chats of
// other owners read as not found.
func (s *ChatService) GetChat(ctx context.Context, ownerID, chatID string) (*domain.ChatWithMessages, error) {
	chat, err := s.ownedChat(ctx, ownerID, chatID)
	if err != nil {
		return nil, err
	}
	msgs, err := s.chats.ListMessages(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return &domain.ChatWithMessages{Chat: *chat, Messages: msgs}, nil
}

// ListChats returns chats newest activity first, with display titles filled in.
func (s *ChatService) ListChats(ctx context.Context, ownerID string) ([]domain.ChatSummary, error) {
	list, err := s.chats.ListChats(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	for i := range list {
		list[i].Title = list[i].DisplayTitle()
	}
	return list, nil
}

// DeleteChat removes the chat and its messages.
func (s *ChatService) DeleteChat(ctx context.Context, ownerID, chatID string) error {
	if _, err := s.ownedChat(ctx, ownerID, chatID); err != nil {
		return err
	}
	if err := s.chats.DeleteChat(ctx, chatID); err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	return nil
}

// Stats aggregates chat and message counts for ownerID.
func (s *ChatService) Stats(ctx context.Context, ownerID string) (*domain.ChatStats, error) {
	stats, err := s.chats.ChatStats(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("chat stats: %w", err)
	}
	return stats, nil
}

// SendMessage runs one turn.
//
// The user message is stored before anything else, so a failed completion
// leaves it in the chat without a reply. Retrieval failures only degrade
// the answer to the no-context prompt.
func (s *ChatService) SendMessage(ctx context.Context, req domain.SendMessageRequest) (*domain.TurnResult, error) {
	res, err := s.sendMessage(ctx, req)
	s.metrics.RecordChatTurn(err)
	return res, err
}

func (s *ChatService) sendMessage(ctx context.Context, req domain.SendMessageRequest) (*domain.TurnResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	chat, err := s.ownedChat(ctx, req.OwnerID, req.ChatID)
	if err != nil {
		return nil, err
	}

	userMsg := domain.Message{
		ChatID:    chat.ID,
		Role:      domain.RoleUser,
		Content:   req.Message,
		CreatedAt: s.now().UTC(),
	}
	if err := s.chats.AppendMessage(ctx, &userMsg); err != nil {
		return nil, fmt.Errorf("save user message: %w", err)
	}

	var hits []domain.SearchHit
	if req.UseRetrieval {
		result := s.retriever.retrieve(ctx, req.Message, req.MaxSources, req.ScoreThreshold)
		switch {
		case result.Failed():
			logger.Warn("Retrieval failed, answering without context: %v", result.Err)
			s.metrics.RecordRetrieval(retrievalFailed)
		case len(result.Hits) == 0:
			s.metrics.RecordRetrieval(retrievalEmpty)
		default:
			hits = result.Hits
			s.metrics.RecordRetrieval(retrievalHits)
		}
	} else {
		s.metrics.RecordRetrieval(retrievalSkipped)
	}

	history, err := s.history(ctx, chat.ID)
	if err != nil {
		return nil, err
	}

	system, err := s.systemPrompt(BuildContext(hits))
	if err != nil {
		return nil, err
	}

	messages := make([]driven.ChatMessage, 0, len(history)+2)
	messages = append(messages, driven.ChatMessage{Role: driven.RoleSystem, Content: system})
	for _, m := range history {
		messages = append(messages, driven.ChatMessage{Role: string(m.Role), Content: m.Content})
	}
	messages = append(messages, driven.ChatMessage{Role: driven.RoleUser, Content: req.Message})

	started := s.now()
	answer, err := s.llm.Chat(ctx, messages, driven.ChatOptions{
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	s.metrics.ObserveCompletion(s.now().Sub(started))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCompletionService, err)
	}

	assistantMsg := domain.Message{
		ChatID:    chat.ID,
		Role:      domain.RoleAssistant,
		Content:   answer,
		CreatedAt: s.now().UTC(),
		Sources:   SourcesFromHits(hits),
	}
	if err := s.chats.AppendMessage(ctx, &assistantMsg); err != nil {
		return nil, fmt.Errorf("save assistant message: %w", err)
	}

	if chat.Title == "" && len(history) == 0 {
		title := domain.TruncateWithEllipsis(req.Message, domain.ChatTitleLength)
		if err := s.chats.SetChatTitle(ctx, chat.ID, title); err != nil {
			logger.Warn("Failed to title chat %s: %v", chat.ID, err)
		}
	}
	if err := s.chats.TouchChat(ctx, chat.ID, s.now().UTC()); err != nil {
		logger.Warn("Failed to bump chat %s: %v", chat.ID, err)
	}

	return &domain.TurnResult{
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
		TotalSources:     len(assistantMsg.Sources),
		RetrievalUsed:    len(hits) > 0,
	}, nil
}

// history returns the turns before the one just stored, oldest first.
func (s *ChatService) history(ctx context.Context, chatID string) ([]domain.Message, error) {
	recent, err := s.chats.RecentMessages(ctx, chatID, domain.ChatHistoryWindow)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if len(recent) == 0 {
		return nil, nil
	}
	// recent[0] is the new user message.
	prior := recent[1:]
	out := make([]domain.Message, len(prior))
	for i, m := range prior {
		out[len(prior)-1-i] = m
	}
	return out, nil
}

// systemPrompt fills the system frame with either the context or the no-context text.
func (s *ChatService) systemPrompt(contextBlock string) (string, error) {
	frame, err := s.prompts.Load(driven.PromptChatSystem)
	if err != nil {
		return "", fmt.Errorf("load system prompt: %w", err)
	}

	var section string
	if contextBlock != "" {
		tpl, err := s.prompts.Load(driven.PromptChatContext)
		if err != nil {
			return "", fmt.Errorf("load context prompt: %w", err)
		}
		section = fill(tpl, contextBlock)
	} else {
		section, err = s.prompts.Load(driven.PromptChatNoContext)
		if err != nil {
			return "", fmt.Errorf("load no-context prompt: %w", err)
		}
	}
	return fill(frame, section), nil
}

// fill substitutes arg for the template's first %s, or appends it when a
// user-edited template dropped the placeholder. Other % signs stay literal.
func fill(tpl, arg string) string {
	if strings.Contains(tpl, "%s") {
		return strings.Replace(tpl, "%s", arg, 1)
	}
	return tpl + "\n\n" + arg
}

func (s *ChatService) ownedChat(ctx context.Context, ownerID, chatID string) (*domain.Chat, error) {
	chat, err := s.chats.GetChat(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("get chat %s: %w", chatID, err)
	}
	if chat.OwnerID != ownerID {
		return nil, fmt.Errorf("get chat %s: %w", chatID, domain.ErrNotFound)
	}
	return chat, nil
}
