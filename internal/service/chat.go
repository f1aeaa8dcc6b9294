package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/docuchat-ai/document-platform/internal/apperr"
	"github.com/docuchat-ai/document-platform/internal/llm"
	"github.com/docuchat-ai/document-platform/internal/model"
	"github.com/docuchat-ai/document-platform/internal/search"
	"github.com/docuchat-ai/document-platform/internal/storage/record"
	"github.com/docuchat-ai/document-platform/pkg/logger"
	"github.com/docuchat-ai/document-platform/pkg/metrics"
)

// ApologyMessage is returned verbatim when the generation service fails.
const ApologyMessage = "I'm sorry, I'm having trouble generating a response right now. Please try again in a moment."

// excerptLength bounds citation excerpts.
const excerptLength = 200

// ChatConfig holds the tunables for the chat pipeline.
type ChatConfig struct {
	TopK        int
	Model       string
	Temperature float64
	MaxTokens   int
}

// ChatResult is the outcome of one chat turn. Warnings carry swallowed soft
// failures (retrieval, generation, persistence) so callers can assert
// degraded behavior deterministically.
type ChatResult struct {
	Message        string
	ConversationID string
	Sources        []model.Citation
	Warnings       []string
}

// ChatService runs the conversation pipeline: retrieve context, generate an
// answer, persist the extended history. Retrieval, generation and
// persistence failures all degrade the result instead of failing the request.
type ChatService struct {
	conversations record.ConversationStore
	searcher      search.Client
	generator     llm.Client
	cfg           ChatConfig
	logger        *logger.Logger
}

// NewChatService creates a new chat service.
func NewChatService(
	conversations record.ConversationStore,
	searcher search.Client,
	generator llm.Client,
	cfg ChatConfig,
	log *logger.Logger,
) *ChatService {
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	return &ChatService{
		conversations: conversations,
		searcher:      searcher,
		generator:     generator,
		cfg:           cfg,
		logger:        log,
	}
}

// Chat handles one conversation turn for the given user.
func (s *ChatService) Chat(ctx context.Context, userID string, req *model.ChatRequest) (*ChatResult, error) {
	if userID == "" {
		return nil, apperr.ErrUnauthorized
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, apperr.BadRequest("message cannot be empty")
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = NewConversationID()
	}

	var warnings []string

	history := req.History
	if len(history) == 0 && req.ConversationID != "" {
		// The caller referenced an existing conversation without carrying the
		// history; recover it from the store. A miss or read failure just
		// means we continue with an empty history.
		if stored, err := s.conversations.GetConversation(ctx, userID, conversationID); err == nil {
			history = stored.Turns
		}
	}

	// Retrieval failures are non-fatal: the turn proceeds with no context.
	snippets, err := s.searcher.Query(ctx, req.Message, s.cfg.TopK)
	if err != nil {
		snippets = nil
		warnings = append(warnings, fmt.Sprintf("retrieval failed: %v", err))
		s.logger.Warn("search service failed, continuing without context",
			zap.String("user_id", userID),
			zap.String("conversation_id", conversationID),
			zap.Error(err),
		)
		metrics.RecordDegraded("search")
	}

	messages := make([]llm.ChatMessage, 0, len(history)+2)
	messages = append(messages, llm.ChatMessage{
		Role:    string(model.RoleSystem),
		Content: buildSystemPrompt(snippets),
	})
	for _, turn := range history {
		messages = append(messages, llm.ChatMessage{
			Role:    string(turn.Role),
			Content: turn.Content,
		})
	}
	messages = append(messages, llm.ChatMessage{
		Role:    string(model.RoleUser),
		Content: req.Message,
	})

	answer := ApologyMessage
	sources := citations(snippets)

	start := time.Now()
	resp, err := s.generator.Complete(ctx, &llm.CompletionRequest{
		Model:       s.cfg.Model,
		Messages:    messages,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		// Generation failures are soft: the caller gets the canned apology
		// and no citations.
		sources = []model.Citation{}
		warnings = append(warnings, fmt.Sprintf("generation failed: %v", err))
		s.logger.Warn("generation service failed, returning apology",
			zap.String("user_id", userID),
			zap.String("conversation_id", conversationID),
			zap.Error(err),
		)
		metrics.RecordDegraded("generation")
		metrics.RecordLLMRequest(s.cfg.Model, "error", time.Since(start).Seconds(), 0, 0)
	} else {
		answer = resp.Content
		metrics.RecordLLMRequest(resp.Model, "success", time.Since(start).Seconds(), resp.TokensIn, resp.TokensOut)
	}

	turns := make([]model.Turn, 0, len(history)+2)
	turns = append(turns, history...)
	turns = append(turns,
		model.Turn{Role: model.RoleUser, Content: req.Message},
		model.Turn{Role: model.RoleAssistant, Content: answer},
	)

	conv := &model.Conversation{
		UserID:    userID,
		ID:        conversationID,
		Turns:     turns,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.conversations.PutConversation(ctx, conv); err != nil {
		// The caller still gets an answer; continuity may silently break.
		warnings = append(warnings, fmt.Sprintf("conversation save failed: %v", err))
		s.logger.Error("failed to persist conversation",
			zap.String("user_id", userID),
			zap.String("conversation_id", conversationID),
			zap.Error(err),
		)
		metrics.RecordDegraded("persistence")
	} else {
		metrics.ChatTurnsTotal.WithLabelValues(string(model.RoleUser)).Inc()
		metrics.ChatTurnsTotal.WithLabelValues(string(model.RoleAssistant)).Inc()
	}

	return &ChatResult{
		Message:        answer,
		ConversationID: conversationID,
		Sources:        sources,
		Warnings:       warnings,
	}, nil
}

// buildSystemPrompt embeds the retrieved snippets, each tagged with a 1-based
// index and its title, into the assistant instruction.
func buildSystemPrompt(snippets []search.Snippet) string {
	var b strings.Builder
	b.WriteString("You are a helpful assistant that answers questions about the user's uploaded documents. ")
	b.WriteString("Use the provided context to answer; cite sources by their number when you rely on them. ")
	b.WriteString("If the context does not contain the answer, say so.")

	if len(snippets) == 0 {
		b.WriteString("\n\nNo document context is available for this question.")
		return b.String()
	}

	b.WriteString("\n\nContext:")
	for i, sn := range snippets {
		fmt.Fprintf(&b, "\n\n[%d] %s\n%s", i+1, sn.Title, sn.Content)
	}
	return b.String()
}

func citations(snippets []search.Snippet) []model.Citation {
	out := make([]model.Citation, 0, len(snippets))
	for _, sn := range snippets {
		out = append(out, model.Citation{
			DocumentID: sn.DocumentID,
			Title:      sn.Title,
			Location:   sn.Location,
			Excerpt:    excerpt(sn.Content),
		})
	}
	return out
}

func excerpt(content string) string {
	runes := []rune(content)
	if len(runes) <= excerptLength {
		return content
	}
	return string(runes[:excerptLength])
}
