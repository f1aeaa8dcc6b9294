// Package record provides key-addressed structured-document storage.
package record

import (
	"context"

	"github.com/docuchat-ai/document-platform/internal/model"
)

// DocumentStore persists document records keyed by (user id, document id).
type DocumentStore interface {
	PutDocument(ctx context.Context, doc *model.Document) error
	GetDocument(ctx context.Context, userID, documentID string) (*model.Document, error)
}

// ConversationStore persists conversation records keyed by
// (user id, conversation id). Puts overwrite the record wholesale; the
// storage layer's per-key overwrite is assumed atomic.
type ConversationStore interface {
	PutConversation(ctx context.Context, conv *model.Conversation) error
	GetConversation(ctx context.Context, userID, conversationID string) (*model.Conversation, error)
}
