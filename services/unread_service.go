package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// UnreadCounter tracks, per user, how many messages each conversation holds that the user has not read
type UnreadCounter interface {
	Increment(ctx context.Context, userID, conversationID string) error
	Reset(ctx context.Context, userID, conversationID string) error
	Counts(ctx context.Context, userID string) (map[string]int64, error)
}

const unreadPrefix = "chat:unread:" // chat:unread:{userId} - hash conversationId -> count

// RedisUnreadCounter keeps unread counters in one Redis hash per user
type RedisUnreadCounter struct {
	rdb *redis.Client
}

func NewRedisUnreadCounter(rdb *redis.Client) *RedisUnreadCounter {
	return &RedisUnreadCounter{rdb: rdb}
}

func (u *RedisUnreadCounter) Increment(ctx context.Context, userID, conversationID string) error {
	if err := u.rdb.HIncrBy(ctx, unreadPrefix+userID, conversationID, 1).Err(); err != nil {
		return fmt.Errorf("failed to increment unread counter: %w", err)
	}
	return nil
}

func (u *RedisUnreadCounter) Reset(ctx context.Context, userID, conversationID string) error {
	if err := u.rdb.HDel(ctx, unreadPrefix+userID, conversationID).Err(); err != nil {
		return fmt.Errorf("failed to reset unread counter: %w", err)
	}
	return nil
}

func (u *RedisUnreadCounter) Counts(ctx context.Context, userID string) (map[string]int64, error) {
	raw, err := u.rdb.HGetAll(ctx, unreadPrefix+userID).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read unread counters: %w", err)
	}

	counts := make(map[string]int64, len(raw))
	for conversationID, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue // Skip malformed counters
		}
		counts[conversationID] = n
	}
	return counts, nil
}
