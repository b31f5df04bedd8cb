package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Chat turn limits and defaults.
const (
	MaxMessageLength      = 4000
	MinMaxSources         = 1
	MaxMaxSources         = 10
	DefaultMaxSources     = 5
	DefaultScoreThreshold = 0.7
	ChatHistoryWindow     = 10
	ChatTitleLength       = 50
	SourceSnippetLength   = 200
	DefaultChatTitle      = "New Chat"
)

// MessageRole is the author of a chat message.
type MessageRole string

// Message roles.
const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Chat is one conversation.
type Chat struct {
	ID        string
	OwnerID   string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Message is one immutable turn in a chat.
type Message struct {
	ID        string      `json:"id"`
	ChatID    string      `json:"chatId"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"timestamp"`
	Sources   []Source    `json:"sources"`
}

// Source is a retrieved chunk cited by an assistant message.
type Source struct {
	ID         string  `json:"id,omitempty"`
	MessageID  string  `json:"-"`
	Title      string  `json:"title"`
	Snippet    string  `json:"snippet"`
	Page       *int    `json:"page,omitempty"`
	Score      float64 `json:"score"`
	DocumentID string  `json:"documentId,omitempty"`
}

// ChatWithMessages is a chat and its messages in chronological order.
type ChatWithMessages struct {
	Chat     Chat
	Messages []Message
}

// ChatSummary is a listing row for a chat.
type ChatSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	MessageCount int       `json:"messageCount"`
	FirstMessage string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DisplayTitle falls back to a preview of the first message, then to "New Chat".
func (c ChatSummary) DisplayTitle() string {
	if c.Title != "" {
		return c.Title
	}
	if c.FirstMessage != "" {
		return TruncateWithEllipsis(c.FirstMessage, ChatTitleLength)
	}
	return DefaultChatTitle
}

// ChatStats aggregates chat activity for an owner.
type ChatStats struct {
	TotalChats        int `json:"totalChats"`
	TotalMessages     int `json:"totalMessages"`
	AssistantMessages int `json:"assistantMessages"`
	UserQueries       int `json:"userQueries"`
}

// SendMessageRequest is one user turn.
type SendMessageRequest struct {
	ChatID         string
	OwnerID        string
	Message        string
	UseRetrieval   bool
	MaxSources     int
	ScoreThreshold float64
}

// NewSendMessageRequest returns a request with retrieval defaults applied.
func NewSendMessageRequest(chatID, ownerID, message string) SendMessageRequest {
	return SendMessageRequest{
		ChatID:         chatID,
		OwnerID:        ownerID,
		Message:        message,
		UseRetrieval:   true,
		MaxSources:     DefaultMaxSources,
		ScoreThreshold: DefaultScoreThreshold,
	}
}

// Validate checks message length and retrieval bounds.
func (r SendMessageRequest) Validate() error {
	n := utf8.RuneCountInString(r.Message)
	switch {
	case r.ChatID == "":
		return invalidInput("chat id is required")
	case strings.TrimSpace(r.Message) == "":
		return invalidInput("message is required")
	case n > MaxMessageLength:
		return invalidInput("message exceeds 4000 characters")
	case r.MaxSources < MinMaxSources || r.MaxSources > MaxMaxSources:
		return invalidInput("maxSources must be between 1 and 10")
	case r.ScoreThreshold < 0 || r.ScoreThreshold > 1:
		return invalidInput("scoreThreshold must be between 0 and 1")
	}
	return nil
}

// TurnResult is the outcome of a chat turn.
type TurnResult struct {
	UserMessage      Message `json:"userMessage"`
	AssistantMessage Message `json:"assistantMessage"`
	TotalSources     int     `json:"totalSources"`
	RetrievalUsed    bool    `json:"retrievalUsed"`
}

// TruncateWithEllipsis cuts s to n characters and appends "..." when it was longer.
func TruncateWithEllipsis(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

// Snippet returns the first n characters of s followed by "...".
func Snippet(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r) + "..."
}
