package models

// Match is the durable fact that two users accepted each other. Never mutated after creation.
type Match struct {
	PairKey     string `dynamodbav:"pairKey" json:"pairKey"`         // ✅ Partition Key: "<len(low)>:<low>#<high>"
	MatchID     string `dynamodbav:"matchId" json:"matchId"`         // Unique matchId
	User1Handle string `dynamodbav:"user1Handle" json:"user1Handle"` // Lower handle of the pair
	User2Handle string `dynamodbav:"user2Handle" json:"user2Handle"` // Higher handle of the pair
	Status      string `dynamodbav:"status" json:"status"`           // active
	CreatedAt   string `dynamodbav:"createdAt" json:"createdAt"`     // Timestamp of creation
}

// MatchesTable is the DynamoDB table name for user matches
const MatchesTable = "Matches"
