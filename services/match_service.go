package services

import (
	"context"
	"strings"
	"time"

	"vibin_chat/apperrors"
	"vibin_chat/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MatchService is the write side of the match fact. Every match it records is
// followed by an invalidation of the pair in the IdentityCache.
type MatchService struct {
	Store  ChatStore
	Cache  *IdentityCache
	Logger *zap.Logger
}

func NewMatchService(store ChatStore, cache *IdentityCache, logger *zap.Logger) *MatchService {
	return &MatchService{Store: store, Cache: cache, Logger: logger}
}

// RecordMatch persists a match between two users and invalidates their cached identity
func (s *MatchService) RecordMatch(ctx context.Context, user1, user2 string) (*models.Match, error) {
	user1, user2 = strings.TrimSpace(user1), strings.TrimSpace(user2)
	if user1 == "" || user2 == "" {
		return nil, apperrors.Validation("user1Handle and user2Handle are required")
	}
	if !models.ValidUserID(user1) || !models.ValidUserID(user2) {
		return nil, apperrors.ErrInvalidUserID
	}
	if user1 == user2 {
		return nil, apperrors.Validation("a user cannot match with themselves")
	}

	low, high := models.CanonicalPair(user1, user2)
	match := models.Match{
		PairKey:     models.PairKey(low, high),
		MatchID:     uuid.NewString(),
		User1Handle: low,
		User2Handle: high,
		Status:      models.MatchStatusActive,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}

	if err := s.Store.CreateMatch(ctx, match); err != nil {
		s.Logger.Error("❌ failed to create match", zap.String("pair", match.PairKey), zap.Error(err))
		return nil, apperrors.Persistence("failed to create match", err)
	}

	s.Cache.InvalidateMatch(low, high)
	s.Cache.InvalidateConversation(low, high)

	s.Logger.Info("🎉 match created", zap.String("user1", low), zap.String("user2", high))
	return &match, nil
}
