package models

import (
	"time"
)

// MaxMessageLength is the hard cap on message content, in runes
const MaxMessageLength = 1000

// SortKeyLayout is a fixed-width UTC layout so that lexicographic order equals time order
const SortKeyLayout = "2006-01-02T15:04:05.000000000Z"

// Message is a durable, append-only chat message
type Message struct {
	ConversationID string    `dynamodbav:"conversationId" json:"conversationId"` // ✅ Partition Key
	SortKey        string    `dynamodbav:"sortKey" json:"-"`                     // ✅ Sort Key: "<createdAt>#<messageId>"
	MessageID      string    `dynamodbav:"messageId" json:"messageId"`
	SenderID       string    `dynamodbav:"senderId" json:"senderId"`
	Content        string    `dynamodbav:"content" json:"content"`
	CreatedAt      time.Time `dynamodbav:"createdAt" json:"createdAt"`
}

// MessageSortKey builds the range key ordering messages by creation time, then id
func MessageSortKey(createdAt time.Time, messageID string) string {
	return createdAt.UTC().Format(SortKeyLayout) + "#" + messageID
}

// View converts a stored message into its wire shape
func (m Message) View() MessageView {
	return MessageView{
		ID:        m.MessageID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

// MessagesTable is the DynamoDB table name for chat messages
const MessagesTable = "Messages"
