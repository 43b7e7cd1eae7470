package model

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Conversation is the short-term chat state held in the cache.
type Conversation struct {
	ID        string    `json:"conversation_id"`
	Summary   string    `json:"summary"`
	Messages  []Message `json:"history"`
	CreatedAt time.Time `json:"created_at"`
}

// ConversationRecord is appended to users.chatbot_conversations on each turn.
type ConversationRecord struct {
	ConversationID string    `json:"conversation_id"`
	Summary        string    `json:"summary"`
	History        []Message `json:"history"`
	ChangeTime     time.Time `json:"change_time"`
}

// SearchRequest is the body of POST /job-search
type SearchRequest struct {
	Query          string `json:"query" validate:"required"`
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
}

// SearchResponse is returned by POST /job-search
type SearchResponse struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id"`
}
