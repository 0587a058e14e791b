package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"vibin_chat/mocks"
	"vibin_chat/models"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seedMatch(t *testing.T, store *MemoryStore, a, b string) {
	t.Helper()
	require.NoError(t, store.CreateMatch(context.Background(), models.Match{
		MatchID:     a + "-" + b,
		User1Handle: a,
		User2Handle: b,
		Status:      models.MatchStatusActive,
	}))
}

func TestIdentityCache_IsMatchedHitsStoreOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockChatStore(ctrl)
	cache := NewIdentityCache(store, zap.NewNop())

	store.EXPECT().FindMatch(gomock.Any(), "alice", "bob").Return(&models.Match{MatchID: "m1"}, nil).Times(1)

	for i := 0; i < 3; i++ {
		matched, err := cache.IsMatched(context.Background(), "alice", "bob")
		require.NoError(t, err)
		assert.True(t, matched)
	}
	// same pair, other order
	matched, err := cache.IsMatched(context.Background(), "bob", "alice")
	require.NoError(t, err)
	assert.True(t, matched)
}

func TestIdentityCache_CachesNegativeResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockChatStore(ctrl)
	cache := NewIdentityCache(store, zap.NewNop())

	store.EXPECT().FindMatch(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).Times(1)

	for i := 0; i < 2; i++ {
		matched, err := cache.IsMatched(context.Background(), "alice", "carol")
		require.NoError(t, err)
		assert.False(t, matched)
	}
}

func TestIdentityCache_StoreErrorIsNotCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockChatStore(ctrl)
	cache := NewIdentityCache(store, zap.NewNop())

	boom := errors.New("throttled")
	gomock.InOrder(
		store.EXPECT().FindMatch(gomock.Any(), "alice", "bob").Return(nil, boom),
		store.EXPECT().FindMatch(gomock.Any(), "alice", "bob").Return(&models.Match{MatchID: "m1"}, nil),
	)

	_, err := cache.IsMatched(context.Background(), "alice", "bob")
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, cache.Len())

	matched, err := cache.IsMatched(context.Background(), "alice", "bob")
	require.NoError(t, err)
	assert.True(t, matched)
	assert.Equal(t, 0, cache.trackedKeys())
}

func TestIdentityCache_InvalidationBookkeepingDoesNotAccumulate(t *testing.T) {
	store := NewMemoryStore()
	cache := NewIdentityCache(store, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		a, b := fmt.Sprintf("user-%d", i), fmt.Sprintf("peer-%d", i)
		_, err := cache.IsMatched(ctx, a, b)
		require.NoError(t, err)
		cache.InvalidateMatch(a, b)
		cache.InvalidateConversation(a, b)
	}

	assert.Equal(t, 0, cache.Len())
	assert.Equal(t, 0, cache.trackedKeys())
}

func TestIdentityCache_InvalidateMatchForcesRefetch(t *testing.T) {
	store := NewMemoryStore()
	cache := NewIdentityCache(store, zap.NewNop())
	ctx := context.Background()

	matched, err := cache.IsMatched(ctx, "alice", "bob")
	require.NoError(t, err)
	require.False(t, matched)

	seedMatch(t, store, "alice", "bob")

	// still the cached negative
	matched, err = cache.IsMatched(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.False(t, matched)

	cache.InvalidateMatch("bob", "alice")

	matched, err = cache.IsMatched(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.True(t, matched)
}

func TestIdentityCache_ConversationIDCreatesOnce(t *testing.T) {
	store := NewMemoryStore()
	cache := NewIdentityCache(store, zap.NewNop())
	ctx := context.Background()

	first, err := cache.ConversationID(ctx, "alice", "bob")
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := cache.ConversationID(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.ConversationCount())
}

func TestIdentityCache_ConcurrentConversationIDConverges(t *testing.T) {
	store := NewMemoryStore()
	cache := NewIdentityCache(store, zap.NewNop())

	const workers = 32
	ids := make([]string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, b := "alice", "bob"
			if i%2 == 1 {
				a, b = b, a
			}
			id, err := cache.ConversationID(context.Background(), a, b)
			assert.NoError(t, err)
			ids[i] = id
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	assert.Equal(t, 1, store.ConversationCount())
}

func TestIdentityCache_ConversationLookupErrorPropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockChatStore(ctrl)
	cache := NewIdentityCache(store, zap.NewNop())

	boom := errors.New("connection reset")
	store.EXPECT().FindConversation(gomock.Any(), "alice", "bob").Return(nil, nil)
	store.EXPECT().CreateConversation(gomock.Any(), "alice", "bob").Return(nil, boom)

	_, err := cache.ConversationID(context.Background(), "bob", "alice")
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, cache.Len())
}

func TestIdentityCache_InvalidationWinsOverInflightLookup(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockChatStore(ctrl)
	cache := NewIdentityCache(store, zap.NewNop())

	entered := make(chan struct{})
	release := make(chan struct{})

	gomock.InOrder(
		store.EXPECT().FindMatch(gomock.Any(), "alice", "bob").DoAndReturn(
			func(ctx context.Context, a, b string) (*models.Match, error) {
				close(entered)
				<-release
				return nil, nil // stale answer read before the match existed
			}),
		store.EXPECT().FindMatch(gomock.Any(), "alice", "bob").Return(&models.Match{MatchID: "m1"}, nil),
	)

	done := make(chan bool)
	go func() {
		matched, err := cache.IsMatched(context.Background(), "alice", "bob")
		assert.NoError(t, err)
		done <- matched
	}()

	<-entered
	cache.InvalidateMatch("alice", "bob")
	close(release)
	assert.False(t, <-done)

	matched, err := cache.IsMatched(context.Background(), "alice", "bob")
	require.NoError(t, err)
	assert.True(t, matched)
	assert.Equal(t, 0, cache.trackedKeys())
}

func TestIdentityCache_Clear(t *testing.T) {
	store := NewMemoryStore()
	cache := NewIdentityCache(store, zap.NewNop())
	ctx := context.Background()

	_, err := cache.IsMatched(ctx, "alice", "bob")
	require.NoError(t, err)
	_, err = cache.ConversationID(ctx, "carol", "dave")
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Len())

	cache.Clear()
	assert.Equal(t, 0, cache.Len())
}
