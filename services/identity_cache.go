package services

import (
	"context"
	"fmt"
	"sync"

	"vibin_chat/models"

	"go.uber.org/zap"
)

// IdentityCache memoizes, per canonical user pair, whether the pair is matched and
// which conversation belongs to it. Entries live for the process lifetime; there is
// no TTL, so every code path that creates a match must call InvalidateMatch.
type IdentityCache struct {
	store  ChatStore
	logger *zap.Logger

	mu      sync.Mutex
	entries map[string]*cacheEntry
	// gen is bumped when a key is invalidated while lookups for it are in flight, so
	// that they cannot write their stale result back afterwards. Both maps only hold
	// keys with a lookup in flight.
	gen      map[string]uint64
	inflight map[string]int
	epoch    uint64
}

type cacheEntry struct {
	matched        bool
	hasMatched     bool
	conversationID string
}

func NewIdentityCache(store ChatStore, logger *zap.Logger) *IdentityCache {
	return &IdentityCache{
		store:   store,
		logger:  logger,
		entries: map[string]*cacheEntry{},
		gen:      map[string]uint64{},
		inflight: map[string]int{},
	}
}

// IsMatched reports whether the two users have a match. Negative answers are cached too.
func (c *IdentityCache) IsMatched(ctx context.Context, u1, u2 string) (bool, error) {
	key := models.PairKey(u1, u2)

	c.mu.Lock()
	if e, ok := c.entries[key]; ok && e.hasMatched {
		c.mu.Unlock()
		return e.matched, nil
	}
	before := c.beginLocked(key)
	c.mu.Unlock()

	match, err := c.store.FindMatch(ctx, u1, u2)
	if err != nil {
		c.finish(key, before, nil)
		c.logger.Error("❌ match lookup failed", zap.String("pair", key), zap.Error(err))
		return false, fmt.Errorf("failed to look up match: %w", err)
	}
	matched := match != nil

	c.finish(key, before, func(e *cacheEntry) {
		e.matched, e.hasMatched = matched, true
	})

	c.logger.Debug("🔍 match cached", zap.String("pair", key), zap.Bool("matched", matched))
	return matched, nil
}

// ConversationID returns the pair's conversation, creating it on first use
func (c *IdentityCache) ConversationID(ctx context.Context, u1, u2 string) (string, error) {
	key := models.PairKey(u1, u2)

	c.mu.Lock()
	if e, ok := c.entries[key]; ok && e.conversationID != "" {
		c.mu.Unlock()
		return e.conversationID, nil
	}
	before := c.beginLocked(key)
	c.mu.Unlock()

	low, high := models.CanonicalPair(u1, u2)
	conv, err := c.store.FindConversation(ctx, low, high)
	if err != nil {
		c.finish(key, before, nil)
		c.logger.Error("❌ conversation lookup failed", zap.String("pair", key), zap.Error(err))
		return "", fmt.Errorf("failed to look up conversation: %w", err)
	}
	if conv == nil {
		conv, err = c.store.CreateConversation(ctx, low, high)
		if err != nil {
			c.finish(key, before, nil)
			c.logger.Error("❌ conversation create failed", zap.String("pair", key), zap.Error(err))
			return "", fmt.Errorf("failed to create conversation: %w", err)
		}
		c.logger.Info("🆕 conversation ready", zap.String("pair", key), zap.String("conversationId", conv.ConversationID))
	}

	c.finish(key, before, func(e *cacheEntry) {
		e.conversationID = conv.ConversationID
	})

	return conv.ConversationID, nil
}

// InvalidateMatch drops the cached match flag for the pair
func (c *IdentityCache) InvalidateMatch(u1, u2 string) {
	key := models.PairKey(u1, u2)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.bumpLocked(key)
	if e, ok := c.entries[key]; ok {
		e.matched, e.hasMatched = false, false
		c.dropIfEmptyLocked(key, e)
	}
}

// InvalidateConversation drops the cached conversation id for the pair
func (c *IdentityCache) InvalidateConversation(u1, u2 string) {
	key := models.PairKey(u1, u2)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.bumpLocked(key)
	if e, ok := c.entries[key]; ok {
		e.conversationID = ""
		c.dropIfEmptyLocked(key, e)
	}
}

// Clear drops every entry
func (c *IdentityCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = map[string]*cacheEntry{}
	c.epoch++
	c.logger.Info("🧹 identity cache cleared")
}

// Len returns the number of cached pairs
func (c *IdentityCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

type stamp struct {
	epoch, gen uint64
}

// beginLocked registers an in-flight lookup for key and returns the stamp it started with
func (c *IdentityCache) beginLocked(key string) stamp {
	c.inflight[key]++
	return stamp{epoch: c.epoch, gen: c.gen[key]}
}

// finish ends a lookup started by beginLocked. apply runs only if nothing invalidated
// the key in the meantime.
func (c *IdentityCache) finish(key string, before stamp, apply func(*cacheEntry)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if apply != nil && (stamp{epoch: c.epoch, gen: c.gen[key]}) == before {
		apply(c.entryLocked(key))
	}
	c.inflight[key]--
	if c.inflight[key] <= 0 {
		delete(c.inflight, key)
		delete(c.gen, key)
	}
}

func (c *IdentityCache) bumpLocked(key string) {
	if c.inflight[key] > 0 {
		c.gen[key]++
	}
}

// trackedKeys is the number of keys with invalidation bookkeeping
func (c *IdentityCache) trackedKeys() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.gen) + len(c.inflight)
}

func (c *IdentityCache) entryLocked(key string) *cacheEntry {
	e, ok := c.entries[key]
	if !ok {
		e = &cacheEntry{}
		c.entries[key] = e
	}
	return e
}

func (c *IdentityCache) dropIfEmptyLocked(key string, e *cacheEntry) {
	if !e.hasMatched && e.conversationID == "" {
		delete(c.entries, key)
	}
}
