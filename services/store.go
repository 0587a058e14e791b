package services

import (
	"context"
	"errors"
	"time"

	"vibin_chat/models"
)

//go:generate mockgen -destination=../mocks/mock_store.go -package=mocks vibin_chat/services ChatStore

// ChatStore is the Persistence Gateway: the only reader and writer of durable chat records
type ChatStore interface {
	// FindMatch returns nil, nil when the pair has no match
	FindMatch(ctx context.Context, userA, userB string) (*models.Match, error)
	CreateMatch(ctx context.Context, match models.Match) error

	// FindConversation returns nil, nil when the pair has no conversation yet
	FindConversation(ctx context.Context, low, high string) (*models.Conversation, error)
	// CreateConversation is idempotent per pair: when a row already exists it is returned instead
	CreateConversation(ctx context.Context, low, high string) (*models.Conversation, error)
	// GetConversationParticipants fails with ErrConversationNotFound for unknown ids
	GetConversationParticipants(ctx context.Context, conversationID string) (userA, userB string, err error)

	InsertMessage(ctx context.Context, message models.Message) error
	// ListMessages returns the whole conversation, oldest first
	ListMessages(ctx context.Context, conversationID string) ([]models.Message, error)
}

// ErrConversationNotFound is returned by stores for unknown conversation ids
var ErrConversationNotFound = errors.New("conversation not found")

func newConversation(id, low, high string, now time.Time) models.Conversation {
	return models.Conversation{
		PairKey:        models.PairKey(low, high),
		ConversationID: id,
		UserLow:        low,
		UserHigh:       high,
		CreatedAt:      now.UTC().Format(time.RFC3339Nano),
	}
}
