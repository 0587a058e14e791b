// Package timeline keeps the client's view of a conversation: optimistic entries
// shown on submit, reconciled with the durable copies pushed back by the server.
package timeline

import (
	"sync"
	"time"

	"vibin_chat/models"

	"github.com/google/uuid"
)

type State int

const (
	StatePending State = iota
	StateConfirmed
)

// LocalIDPrefix marks ids generated on the client before the server assigned one
const LocalIDPrefix = "local-"

type Entry struct {
	ID        string
	SenderID  string
	Content   string
	CreatedAt time.Time
	State     State
}

func (e Entry) Pending() bool { return e.State == StatePending }

// Timeline is the ordered, duplicate-free list of entries for one conversation.
// Order is append order; entries are never re-sorted.
type Timeline struct {
	mu      sync.Mutex
	entries []Entry
	now     func() time.Time
}

func New() *Timeline {
	return &Timeline{now: time.Now}
}

// Load replaces the timeline with a history read, already ordered oldest first
func (t *Timeline) Load(history []models.MessageView) {
	entries := make([]Entry, 0, len(history))
	for _, m := range history {
		entries = append(entries, confirmed(m))
	}

	t.mu.Lock()
	t.entries = entries
	t.mu.Unlock()
}

// Submit appends a pending entry for content the user just sent
func (t *Timeline) Submit(senderID, content string) Entry {
	e := Entry{
		ID:        LocalIDPrefix + uuid.NewString(),
		SenderID:  senderID,
		Content:   content,
		CreatedAt: t.now().UTC(),
		State:     StatePending,
	}

	t.mu.Lock()
	t.entries = append(t.entries, e)
	t.mu.Unlock()
	return e
}

// Fail removes a pending entry whose send failed and returns its content. ok is false
// when the entry is gone or was already confirmed by a push.
func (t *Timeline) Fail(localID string) (content string, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, e := range t.entries {
		if e.ID == localID && e.Pending() {
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
			return e.Content, true
		}
	}
	return "", false
}

// Receive merges a pushed message. It replaces the entry with the same id, or else the
// oldest pending entry with the same sender and content; otherwise it appends.
// It reports whether a new entry was appended.
func (t *Timeline) Receive(m models.MessageView) (appended bool) {
	incoming := confirmed(m)

	t.mu.Lock()
	defer t.mu.Unlock()

	if i := t.indexLocked(incoming); i >= 0 {
		t.entries[i] = incoming
		return false
	}
	t.entries = append(t.entries, incoming)
	return true
}

func (t *Timeline) indexLocked(incoming Entry) int {
	for i, e := range t.entries {
		if e.ID == incoming.ID {
			return i
		}
	}
	for i, e := range t.entries {
		if e.Pending() && e.SenderID == incoming.SenderID && e.Content == incoming.Content {
			return i
		}
	}
	return -1
}

// Entries returns a copy of the timeline
func (t *Timeline) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Entry(nil), t.entries...)
}

func (t *Timeline) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

func confirmed(m models.MessageView) Entry {
	return Entry{
		ID:        m.ID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
		State:     StateConfirmed,
	}
}
