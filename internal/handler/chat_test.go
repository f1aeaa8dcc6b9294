package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuchat-ai/document-platform/internal/llm"
	"github.com/docuchat-ai/document-platform/internal/model"
	"github.com/docuchat-ai/document-platform/internal/search"
	"github.com/docuchat-ai/document-platform/internal/service"
	"github.com/docuchat-ai/document-platform/internal/storage/record"
	"github.com/docuchat-ai/document-platform/pkg/logger"
)

type stubSearch struct {
	snippets []search.Snippet
	err      error
}

func (s *stubSearch) Query(ctx context.Context, query string, topK int) ([]search.Snippet, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.snippets, nil
}

type stubLLM struct {
	content string
	err     error
}

func (s *stubLLM) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &llm.CompletionResponse{Content: s.content, Model: "gpt-4o"}, nil
}

func (s *stubLLM) Name() string { return "stub" }

func newChatHandler(t *testing.T, searcher search.Client, generator llm.Client) (*ChatHandler, *record.MemoryStore) {
	t.Helper()
	store := record.NewMemoryStore()
	svc := service.NewChatService(store, searcher, generator, service.ChatConfig{TopK: 5}, logger.NewNop())
	return NewChatHandler(svc, logger.NewNop()), store
}

func chatRequest(t *testing.T, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestChatHandlerNewConversation(t *testing.T) {
	h, store := newChatHandler(t, &stubSearch{}, &stubLLM{content: "hi there"})

	req := asUser(chatRequest(t, model.ChatRequest{Message: "hello"}), "u1")
	rec := httptest.NewRecorder()
	h.Send(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "hi there", resp.Message)
	assert.Regexp(t, `^conv_\d+_[a-z0-9]{8}$`, resp.ConversationID)
	assert.NotNil(t, resp.Sources)

	conv, err := store.GetConversation(context.Background(), "u1", resp.ConversationID)
	require.NoError(t, err)
	assert.Len(t, conv.Turns, 2)
}

func TestChatHandlerSearchFailureStillOK(t *testing.T) {
	h, _ := newChatHandler(t, &stubSearch{err: errors.New("boom")}, &stubLLM{content: "answer"})

	req := asUser(chatRequest(t, model.ChatRequest{Message: "hello"}), "u1")
	rec := httptest.NewRecorder()
	h.Send(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp model.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "answer", resp.Message)
	assert.Empty(t, resp.Sources)
}

func TestChatHandlerGenerationFailureReturnsApology(t *testing.T) {
	h, _ := newChatHandler(t, &stubSearch{}, &stubLLM{err: errors.New("overloaded")})

	req := asUser(chatRequest(t, model.ChatRequest{Message: "hello"}), "u1")
	rec := httptest.NewRecorder()
	h.Send(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp model.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, service.ApologyMessage, resp.Message)
	assert.Empty(t, resp.Sources)
}

func TestChatHandlerEmptyMessage(t *testing.T) {
	h, _ := newChatHandler(t, &stubSearch{}, &stubLLM{content: "x"})

	req := asUser(chatRequest(t, model.ChatRequest{Message: ""}), "u1")
	rec := httptest.NewRecorder()
	h.Send(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatHandlerInvalidBody(t *testing.T) {
	h, _ := newChatHandler(t, &stubSearch{}, &stubLLM{content: "x"})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.Send(rec, asUser(req, "u1"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatHandlerUnauthorized(t *testing.T) {
	h, _ := newChatHandler(t, &stubSearch{}, &stubLLM{content: "x"})

	req := chatRequest(t, model.ChatRequest{Message: "hello"})
	rec := httptest.NewRecorder()
	h.Send(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChatHandlerReturnsCitations(t *testing.T) {
	h, _ := newChatHandler(t, &stubSearch{snippets: []search.Snippet{
		{DocumentID: "doc_1_aaaaaaaa", Title: "Report", Content: "relevant text", Location: "page 2"},
	}}, &stubLLM{content: "cited answer"})

	req := asUser(chatRequest(t, model.ChatRequest{Message: "hello"}), "u1")
	rec := httptest.NewRecorder()
	h.Send(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp model.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, "doc_1_aaaaaaaa", resp.Sources[0].DocumentID)
	assert.Equal(t, "Report", resp.Sources[0].Title)
	assert.Equal(t, "page 2", resp.Sources[0].Location)
	assert.Equal(t, "relevant text", resp.Sources[0].Excerpt)
}
