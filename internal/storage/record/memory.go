package record

import (
	"context"
	"sync"

	"github.com/docuchat-ai/document-platform/internal/apperr"
	"github.com/docuchat-ai/document-platform/internal/model"
)

// MemoryStore is an in-memory record store for local runs and tests.
type MemoryStore struct {
	mu            sync.RWMutex
	documents     map[string]model.Document
	conversations map[string]model.Conversation
}

// NewMemoryStore creates an empty in-memory record store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		documents:     make(map[string]model.Document),
		conversations: make(map[string]model.Conversation),
	}
}

func memKey(userID, id string) string {
	return userID + "/" + id
}

// PutDocument writes a document record.
func (s *MemoryStore) PutDocument(ctx context.Context, doc *model.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[memKey(doc.UserID, doc.ID)] = *doc
	return nil
}

// GetDocument reads a document record.
func (s *MemoryStore) GetDocument(ctx context.Context, userID, documentID string) (*model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[memKey(userID, documentID)]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &doc, nil
}

// PutConversation overwrites a conversation record.
func (s *MemoryStore) PutConversation(ctx context.Context, conv *model.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations[memKey(conv.UserID, conv.ID)] = *conv
	return nil
}

// GetConversation reads a conversation record.
func (s *MemoryStore) GetConversation(ctx context.Context, userID, conversationID string) (*model.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.conversations[memKey(userID, conversationID)]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &conv, nil
}

var (
	_ DocumentStore     = (*MemoryStore)(nil)
	_ ConversationStore = (*MemoryStore)(nil)
)
