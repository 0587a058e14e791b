package services

import (
	"context"
	"errors"
	"testing"

	"vibin_chat/apperrors"
	"vibin_chat/mocks"
	"vibin_chat/models"
	"vibin_chat/socket"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMatchService_RecordMatchOpensChat(t *testing.T) {
	logger := zap.NewNop()
	store := NewMemoryStore()
	cache := NewIdentityCache(store, logger)
	matches := NewMatchService(store, cache, logger)
	chat := NewChatService(store, cache, socket.NewRouter(logger, 1), logger)
	ctx := context.Background()

	_, err := chat.SendMessage(ctx, send("alice", "bob", "hi"))
	require.ErrorIs(t, err, apperrors.ErrNotMatched)

	match, err := matches.RecordMatch(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", match.User1Handle)
	assert.Equal(t, "bob", match.User2Handle)
	assert.Equal(t, models.MatchStatusActive, match.Status)

	// the earlier negative answer must not survive the match
	_, err = chat.SendMessage(ctx, send("alice", "bob", "hi"))
	require.NoError(t, err)
}

func TestMatchService_Validation(t *testing.T) {
	logger := zap.NewNop()
	store := NewMemoryStore()
	matches := NewMatchService(store, NewIdentityCache(store, logger), logger)

	_, err := matches.RecordMatch(context.Background(), "", "bob")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = matches.RecordMatch(context.Background(), "bob", "bob")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = matches.RecordMatch(context.Background(), "a#b", "c")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestMatchService_StoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockChatStore(ctrl)
	logger := zap.NewNop()
	matches := NewMatchService(store, NewIdentityCache(store, logger), logger)

	store.EXPECT().CreateMatch(gomock.Any(), gomock.Any()).Return(errors.New("unavailable"))

	_, err := matches.RecordMatch(context.Background(), "alice", "bob")
	assert.ErrorIs(t, err, apperrors.ErrPersistence)
}
