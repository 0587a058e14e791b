package models

// Conversation is the single durable container of messages for one matched pair
type Conversation struct {
	PairKey        string `dynamodbav:"pairKey" json:"pairKey"`               // ✅ Partition Key, one row per pair
	ConversationID string `dynamodbav:"conversationId" json:"conversationId"` // ✅ GSI key
	UserLow        string `dynamodbav:"userLow" json:"userLow"`
	UserHigh       string `dynamodbav:"userHigh" json:"userHigh"`
	CreatedAt      string `dynamodbav:"createdAt" json:"createdAt"`
}

// HasParticipant reports whether userID is one of the two members
func (c *Conversation) HasParticipant(userID string) bool {
	return userID != "" && (c.UserLow == userID || c.UserHigh == userID)
}

// ConversationsTable is the DynamoDB table name for conversations
const ConversationsTable = "Conversations"

// ConversationIDIndex is the GSI used to resolve participants from a conversationId
const ConversationIDIndex = "conversationId-index"
