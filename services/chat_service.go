package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"vibin_chat/apperrors"
	"vibin_chat/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -destination=../mocks/mock_delivery.go -package=mocks vibin_chat/services Pusher,MessagePublisher,UnreadCounter

// Pusher delivers an event to every live connection of a user. Implementations must not block.
type Pusher interface {
	Push(userID, event string, payload interface{}) error
}

// ChatService is the message delivery pipeline: authorize, persist, then fan out
type ChatService struct {
	Store     ChatStore
	Cache     *IdentityCache
	Pusher    Pusher
	Publisher MessagePublisher // optional
	Unread    UnreadCounter    // optional
	Logger    *zap.Logger

	now func() time.Time
}

func NewChatService(store ChatStore, cache *IdentityCache, pusher Pusher, logger *zap.Logger) *ChatService {
	return &ChatService{
		Store:  store,
		Cache:  cache,
		Pusher: pusher,
		Logger: logger,
		now:    time.Now,
	}
}

// SendMessageResult identifies the durable copy of a sent message
type SendMessageResult struct {
	ConversationID string
	Message        models.Message
}

// SendMessage authorizes, persists and then pushes a message. A push failure never
// fails the call: once InsertMessage succeeded the message is durable.
func (s *ChatService) SendMessage(ctx context.Context, req models.SendMessageRequest) (*SendMessageResult, error) {
	from := strings.TrimSpace(req.FromUserID)
	to := strings.TrimSpace(req.ToUserID)
	if from == "" || to == "" {
		return nil, apperrors.ErrMissingUsers
	}
	if !models.ValidUserID(from) || !models.ValidUserID(to) {
		return nil, apperrors.ErrInvalidUserID
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, apperrors.ErrEmptyContent
	}
	content := truncateRunes(req.Content, models.MaxMessageLength)

	matched, err := s.Cache.IsMatched(ctx, from, to)
	if err != nil {
		return nil, apperrors.Persistence("failed to verify match", err)
	}
	if !matched {
		s.Logger.Info("🚫 send rejected, users not matched", zap.String("from", from), zap.String("to", to))
		return nil, apperrors.ErrNotMatched
	}

	conversationID, err := s.Cache.ConversationID(ctx, from, to)
	if err != nil {
		return nil, apperrors.Persistence("failed to resolve conversation", err)
	}

	message := models.Message{
		ConversationID: conversationID,
		MessageID:      uuid.NewString(),
		SenderID:       from,
		Content:        content,
		CreatedAt:      s.clock().UTC(),
	}
	message.SortKey = models.MessageSortKey(message.CreatedAt, message.MessageID)

	if err := s.Store.InsertMessage(ctx, message); err != nil {
		s.Logger.Error("❌ failed to store message", zap.String("conversationId", conversationID), zap.Error(err))
		return nil, apperrors.Persistence("failed to send message", err)
	}
	s.Logger.Info("📩 message stored",
		zap.String("conversationId", conversationID),
		zap.String("messageId", message.MessageID),
		zap.String("from", from))

	s.deliver(message, from, to)
	s.afterDelivery(ctx, message, to)

	return &SendMessageResult{ConversationID: conversationID, Message: message}, nil
}

// deliver pushes the persisted message to both participants, recipient first
func (s *ChatService) deliver(message models.Message, from, to string) {
	view := message.View()
	for _, userID := range []string{to, from} {
		if err := s.Pusher.Push(userID, models.EventNewMessage, view); err != nil {
			s.Logger.Warn("⚠️ push failed, message stays durable",
				zap.String("userId", userID),
				zap.String("messageId", message.MessageID),
				zap.Error(err))
		}
		if from == to {
			break
		}
	}
}

func (s *ChatService) afterDelivery(ctx context.Context, message models.Message, recipient string) {
	if s.Unread != nil {
		if err := s.Unread.Increment(ctx, recipient, message.ConversationID); err != nil {
			s.Logger.Warn("⚠️ unread counter not updated", zap.String("userId", recipient), zap.Error(err))
		}
	}
	if s.Publisher != nil {
		if err := s.Publisher.PublishMessage(message); err != nil {
			s.Logger.Warn("⚠️ message event not published", zap.String("messageId", message.MessageID), zap.Error(err))
		}
	}
}

// GetConversationHistory returns the full history, oldest first, to a participant
func (s *ChatService) GetConversationHistory(ctx context.Context, conversationID, requestingUser string) ([]models.MessageView, error) {
	if strings.TrimSpace(conversationID) == "" || strings.TrimSpace(requestingUser) == "" {
		return nil, apperrors.Validation("conversationId and userId are required")
	}
	if err := s.authorizeParticipant(ctx, conversationID, requestingUser); err != nil {
		return nil, err
	}
	return s.readHistory(ctx, conversationID)
}

// GetHistoryBetween is the legacy pair-addressed history read
func (s *ChatService) GetHistoryBetween(ctx context.Context, userA, userB string) ([]models.MessageView, error) {
	userA, userB = strings.TrimSpace(userA), strings.TrimSpace(userB)
	if userA == "" || userB == "" {
		return nil, apperrors.Validation("userA and userB are required")
	}
	if !models.ValidUserID(userA) || !models.ValidUserID(userB) {
		return nil, apperrors.ErrInvalidUserID
	}

	matched, err := s.Cache.IsMatched(ctx, userA, userB)
	if err != nil {
		return nil, apperrors.Persistence("failed to verify match", err)
	}
	if !matched {
		return nil, apperrors.ErrNotMatched
	}

	conversationID, err := s.Cache.ConversationID(ctx, userA, userB)
	if err != nil {
		return nil, apperrors.Persistence("failed to resolve conversation", err)
	}
	return s.readHistory(ctx, conversationID)
}

// MarkAsRead resets the user's unread counter for a conversation they take part in
func (s *ChatService) MarkAsRead(ctx context.Context, conversationID, userID string) error {
	if strings.TrimSpace(conversationID) == "" || strings.TrimSpace(userID) == "" {
		return apperrors.Validation("conversationId and userId are required")
	}
	if err := s.authorizeParticipant(ctx, conversationID, userID); err != nil {
		return err
	}
	if s.Unread == nil {
		return nil
	}
	if err := s.Unread.Reset(ctx, userID, conversationID); err != nil {
		return apperrors.Persistence("failed to mark messages as read", err)
	}
	s.Logger.Info("✅ conversation marked as read", zap.String("conversationId", conversationID), zap.String("userId", userID))
	return nil
}

// UnreadCounts returns unread messages per conversation for a user
func (s *ChatService) UnreadCounts(ctx context.Context, userID string) (map[string]int64, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.Validation("userId is required")
	}
	if s.Unread == nil {
		return map[string]int64{}, nil
	}
	counts, err := s.Unread.Counts(ctx, userID)
	if err != nil {
		return nil, apperrors.Persistence("failed to fetch unread counts", err)
	}
	return counts, nil
}

func (s *ChatService) authorizeParticipant(ctx context.Context, conversationID, userID string) error {
	userA, userB, err := s.Store.GetConversationParticipants(ctx, conversationID)
	if errors.Is(err, ErrConversationNotFound) {
		return apperrors.ErrConversationNotFound
	}
	if err != nil {
		return apperrors.Persistence("failed to load conversation", err)
	}
	if userID != userA && userID != userB {
		s.Logger.Info("🚫 history access denied", zap.String("conversationId", conversationID), zap.String("userId", userID))
		return apperrors.ErrAccessDenied
	}
	return nil
}

func (s *ChatService) readHistory(ctx context.Context, conversationID string) ([]models.MessageView, error) {
	messages, err := s.Store.ListMessages(ctx, conversationID)
	if err != nil {
		s.Logger.Error("❌ failed to fetch messages", zap.String("conversationId", conversationID), zap.Error(err))
		return nil, apperrors.Persistence("failed to fetch messages", err)
	}

	views := make([]models.MessageView, 0, len(messages))
	for _, m := range messages {
		views = append(views, m.View())
	}
	s.Logger.Debug("✅ history loaded", zap.String("conversationId", conversationID), zap.Int("count", len(views)))
	return views, nil
}

func (s *ChatService) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
