package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/docuchat-ai/document-platform/internal/middleware"
	"github.com/docuchat-ai/document-platform/internal/model"
	"github.com/docuchat-ai/document-platform/internal/service"
	"github.com/docuchat-ai/document-platform/pkg/logger"
)

// ChatHandler handles chat endpoints.
type ChatHandler struct {
	chat   *service.ChatService
	logger *logger.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(chat *service.ChatService, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		chat:   chat,
		logger: log,
	}
}

// Send handles POST /api/v1/chat.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateMessageContent(req.Message); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.chat.Chat(ctx, userID, &req)
	if err != nil {
		h.logger.Error("chat turn failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.ChatResponse{
		Message:        result.Message,
		ConversationID: result.ConversationID,
		Sources:        result.Sources,
	})
}
