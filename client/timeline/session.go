package timeline

import (
	"context"
	"errors"
	"strings"
	"sync"

	"vibin_chat/apperrors"
	"vibin_chat/client/scroll"
	"vibin_chat/models"
)

// MsgSendFailed is shown for persistence and transport failures; the draft is kept for a retry
const MsgSendFailed = "failed to send, please retry"

// Sender issues the send request. chatclient.Client implements it.
type Sender interface {
	Send(ctx context.Context, req models.SendMessageRequest) (*models.SendMessageResponse, error)
}

// Session binds one open chat screen: the timeline, the composer draft, the scroll
// controller and the last user-visible error.
type Session struct {
	UserID   string
	PeerID   string
	Timeline *Timeline
	Scroll   *scroll.Controller

	sender Sender

	mu        sync.Mutex
	draft     string
	lastError string
}

func NewSession(userID, peerID string, sender Sender, viewport scroll.Viewport) *Session {
	return &Session{
		UserID:   userID,
		PeerID:   peerID,
		Timeline: New(),
		Scroll:   scroll.NewController(viewport),
		sender:   sender,
	}
}

func (s *Session) SetDraft(text string) {
	s.mu.Lock()
	s.draft = text
	s.mu.Unlock()
}

func (s *Session) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Error is the message to show to the user, empty when the last send went fine
func (s *Session) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// LoadHistory replaces the timeline and jumps to the newest entry
func (s *Session) LoadHistory(history []models.MessageView) {
	s.Timeline.Load(history)
	s.Scroll.OnHistoryLoaded()
}

// Send submits the current draft. The entry is shown immediately as pending and is
// confirmed later by the pushed copy, not by the response. On failure it is removed
// and the draft restored.
func (s *Session) Send(ctx context.Context) error {
	s.mu.Lock()
	content := s.draft
	if strings.TrimSpace(content) == "" {
		s.mu.Unlock()
		return apperrors.ErrEmptyContent
	}
	s.draft = ""
	s.lastError = ""
	s.mu.Unlock()

	entry := s.Timeline.Submit(s.UserID, content)
	s.Scroll.OnAppend(true)

	_, err := s.sender.Send(ctx, models.SendMessageRequest{
		FromUserID: s.UserID,
		ToUserID:   s.PeerID,
		Content:    content,
	})
	if err == nil {
		return nil
	}

	if _, removed := s.Timeline.Fail(entry.ID); !removed {
		// the push already confirmed it, the message is durable
		return nil
	}

	s.mu.Lock()
	if s.draft == "" {
		s.draft = content
	}
	s.lastError = UserMessage(err)
	s.mu.Unlock()
	return err
}

// OnPush merges a new_message push into the timeline
func (s *Session) OnPush(m models.MessageView) {
	if s.Timeline.Receive(m) {
		s.Scroll.OnAppend(false)
	}
}

// UserMessage turns a send error into the text shown to the user
func UserMessage(err error) string {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return MsgSendFailed
	}
	switch appErr.Code {
	case apperrors.CodeInvalidArgument, apperrors.CodeNotMatched, apperrors.CodePermissionDenied, apperrors.CodeNotFound:
		if appErr.Message != "" {
			return appErr.Message
		}
	}
	return MsgSendFailed
}
