package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"vibin_chat/models"

	"github.com/google/uuid"
)

// MemoryStore keeps every record in process memory. Used by STORE_BACKEND=memory and tests.
type MemoryStore struct {
	mu            sync.RWMutex
	matches       map[string]models.Match
	conversations map[string]models.Conversation // by pair key
	byID          map[string]string              // conversationId -> pair key
	messages      map[string][]storedMessage
	seq           uint64
}

type storedMessage struct {
	models.Message
	seq uint64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		matches:       map[string]models.Match{},
		conversations: map[string]models.Conversation{},
		byID:          map[string]string{},
		messages:      map[string][]storedMessage{},
	}
}

func (s *MemoryStore) FindMatch(ctx context.Context, userA, userB string) (*models.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	match, ok := s.matches[models.PairKey(userA, userB)]
	if !ok {
		return nil, nil
	}
	return &match, nil
}

func (s *MemoryStore) CreateMatch(ctx context.Context, match models.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := models.PairKey(match.User1Handle, match.User2Handle)
	if _, exists := s.matches[key]; exists {
		return nil
	}
	match.PairKey = key
	s.matches[key] = match
	return nil
}

func (s *MemoryStore) FindConversation(ctx context.Context, low, high string) (*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[models.PairKey(low, high)]
	if !ok {
		return nil, nil
	}
	return &conv, nil
}

func (s *MemoryStore) CreateConversation(ctx context.Context, low, high string) (*models.Conversation, error) {
	low, high = models.CanonicalPair(low, high)

	s.mu.Lock()
	defer s.mu.Unlock()

	key := models.PairKey(low, high)
	if conv, ok := s.conversations[key]; ok {
		return &conv, nil
	}
	conv := newConversation(uuid.NewString(), low, high, time.Now())
	s.conversations[key] = conv
	s.byID[conv.ConversationID] = key
	return &conv, nil
}

func (s *MemoryStore) GetConversationParticipants(ctx context.Context, conversationID string) (string, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key, ok := s.byID[conversationID]
	if !ok {
		return "", "", ErrConversationNotFound
	}
	conv := s.conversations[key]
	return conv.UserLow, conv.UserHigh, nil
}

func (s *MemoryStore) InsertMessage(ctx context.Context, message models.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	s.messages[message.ConversationID] = append(s.messages[message.ConversationID], storedMessage{Message: message, seq: s.seq})
	return nil
}

func (s *MemoryStore) ListMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	s.mu.RLock()
	stored := append([]storedMessage(nil), s.messages[conversationID]...)
	s.mu.RUnlock()

	sort.SliceStable(stored, func(i, j int) bool {
		if !stored[i].CreatedAt.Equal(stored[j].CreatedAt) {
			return stored[i].CreatedAt.Before(stored[j].CreatedAt)
		}
		return stored[i].seq < stored[j].seq
	})

	messages := make([]models.Message, 0, len(stored))
	for _, m := range stored {
		messages = append(messages, m.Message)
	}
	return messages, nil
}

// ConversationCount is used by tests asserting the one-conversation-per-pair invariant
func (s *MemoryStore) ConversationCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations)
}

// MessageCount returns the number of stored messages across all conversations
func (s *MemoryStore) MessageCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, msgs := range s.messages {
		n += len(msgs)
	}
	return n
}
