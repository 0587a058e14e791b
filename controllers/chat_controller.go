package controllers

import (
	"net/http"
	"time"

	"vibin_chat/apperrors"
	"vibin_chat/models"
	"vibin_chat/services"
	"vibin_chat/utils"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// ChatController struct
type ChatController struct {
	ChatService *services.ChatService
	Logger      *zap.Logger
	Timeout     time.Duration
}

// NewChatController initializes the chat controller
func NewChatController(service *services.ChatService, logger *zap.Logger, timeout time.Duration) *ChatController {
	return &ChatController{ChatService: service, Logger: logger, Timeout: timeout}
}

// CreateMessage handles POST /api/chat/message
func (c *ChatController) CreateMessage(w http.ResponseWriter, r *http.Request) {
	var req models.SendMessageRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := requestContext(r, c.Timeout)
	defer cancel()

	result, err := c.ChatService.SendMessage(ctx, req)
	if err != nil {
		c.logFailure("❌ failed to send message", err, zap.String("from", req.FromUserID), zap.String("to", req.ToUserID))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, models.SendMessageResponse{
		Sent:           true,
		ConversationID: result.ConversationID,
		ID:             result.Message.MessageID,
	})
}

// GetConversationMessages handles GET /api/chat/conversations/{conversationId}/messages?userId=
func (c *ChatController) GetConversationMessages(w http.ResponseWriter, r *http.Request) {
	conversationID := mux.Vars(r)["conversationId"]
	userID := r.URL.Query().Get("userId")

	ctx, cancel := requestContext(r, c.Timeout)
	defer cancel()

	messages, err := c.ChatService.GetConversationHistory(ctx, conversationID, userID)
	if err != nil {
		c.logFailure("❌ failed to fetch conversation", err, zap.String("conversationId", conversationID), zap.String("userId", userID))
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, messages)
}

// GetMessagesBetween handles the legacy GET /api/chat/messages?userA=&userB=
func (c *ChatController) GetMessagesBetween(w http.ResponseWriter, r *http.Request) {
	userA := r.URL.Query().Get("userA")
	userB := r.URL.Query().Get("userB")

	ctx, cancel := requestContext(r, c.Timeout)
	defer cancel()

	messages, err := c.ChatService.GetHistoryBetween(ctx, userA, userB)
	if err != nil {
		c.logFailure("❌ failed to fetch messages", err, zap.String("userA", userA), zap.String("userB", userB))
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, messages)
}

// MarkMessagesAsRead handles POST /api/chat/messages/mark-as-read
func (c *ChatController) MarkMessagesAsRead(w http.ResponseWriter, r *http.Request) {
	var req models.MarkAsReadRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := requestContext(r, c.Timeout)
	defer cancel()

	if err := c.ChatService.MarkAsRead(ctx, req.ConversationID, req.UserID); err != nil {
		c.logFailure("❌ failed to mark messages as read", err, zap.String("conversationId", req.ConversationID))
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{"status": "success"})
}

// GetUnreadCounts handles GET /api/chat/unread?userId=
func (c *ChatController) GetUnreadCounts(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")

	ctx, cancel := requestContext(r, c.Timeout)
	defer cancel()

	counts, err := c.ChatService.UnreadCounts(ctx, userID)
	if err != nil {
		c.logFailure("❌ failed to fetch unread counts", err, zap.String("userId", userID))
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, counts)
}

// logFailure logs server-side faults at error level and caller mistakes at info
func (c *ChatController) logFailure(msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	if apperrors.HTTPStatus(err) >= http.StatusInternalServerError {
		c.Logger.Error(msg, fields...)
		return
	}
	c.Logger.Info(msg, fields...)
}
