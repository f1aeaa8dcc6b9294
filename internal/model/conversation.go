package model

import (
	"time"
)

// Role represents the role of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Turn is a single message within a conversation.
type Turn struct {
	Role    Role   `json:"role" dynamodbav:"role"`
	Content string `json:"content" dynamodbav:"content"`
}

// Conversation holds the full turn history for one (user, conversation) pair.
// It is overwritten wholesale on each save; concurrent turns for the same id
// race with last-write-wins semantics.
type Conversation struct {
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	ID        string    `json:"id" dynamodbav:"id"`
	Turns     []Turn    `json:"turns" dynamodbav:"turns"`
	UpdatedAt time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

// ChatRequest is the request body for a chat turn.
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId,omitempty"`
	History        []Turn `json:"history,omitempty"`
}

// Citation is a structured reference attached to a generated answer.
type Citation struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	Location   string `json:"location,omitempty"`
	Excerpt    string `json:"excerpt"`
}

// ChatResponse is the response body for a chat turn.
type ChatResponse struct {
	Message        string     `json:"message"`
	ConversationID string     `json:"conversationId"`
	Sources        []Citation `json:"sources"`
}
