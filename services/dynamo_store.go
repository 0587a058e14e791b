package services

import (
	"context"
	"errors"
	"time"

	"vibin_chat/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
)

// DynamoStore implements ChatStore on three tables:
//
//	Matches        PK pairKey
//	Conversations  PK pairKey, GSI conversationId-index; every conversation also has an
//	               "id:<conversationId>" row so participants can be read consistently
//	Messages       PK conversationId, SK sortKey ("<createdAt>#<messageId>")
type DynamoStore struct {
	Dynamo *DynamoService
}

func NewDynamoStore(dynamo *DynamoService) *DynamoStore {
	return &DynamoStore{Dynamo: dynamo}
}

// conversationAliasKey never collides with a pair key, which always starts with a length
func conversationAliasKey(conversationID string) string {
	return "id:" + conversationID
}

func pairKeyAttr(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pairKey": &types.AttributeValueMemberS{Value: key},
	}
}

func (s *DynamoStore) FindMatch(ctx context.Context, userA, userB string) (*models.Match, error) {
	item, err := s.Dynamo.GetItem(ctx, models.MatchesTable, pairKeyAttr(models.PairKey(userA, userB)), false)
	if errors.Is(err, ErrItemNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "dynamoStore.FindMatch.GetItem")
	}

	var match models.Match
	if err := attributevalue.UnmarshalMap(item, &match); err != nil {
		return nil, pkgerrors.Wrap(err, "dynamoStore.FindMatch.Unmarshal")
	}
	return &match, nil
}

func (s *DynamoStore) CreateMatch(ctx context.Context, match models.Match) error {
	match.PairKey = models.PairKey(match.User1Handle, match.User2Handle)
	err := s.Dynamo.PutItemIfAbsent(ctx, models.MatchesTable, "pairKey", match)
	if errors.Is(err, ErrConditionFailed) {
		return nil // matches are immutable, the first one wins
	}
	return pkgerrors.Wrap(err, "dynamoStore.CreateMatch.PutItem")
}

func (s *DynamoStore) FindConversation(ctx context.Context, low, high string) (*models.Conversation, error) {
	return s.getConversation(ctx, models.PairKey(low, high), false)
}

func (s *DynamoStore) getConversation(ctx context.Context, pairKey string, consistent bool) (*models.Conversation, error) {
	item, err := s.Dynamo.GetItem(ctx, models.ConversationsTable, pairKeyAttr(pairKey), consistent)
	if errors.Is(err, ErrItemNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "dynamoStore.getConversation.GetItem")
	}

	var conv models.Conversation
	if err := attributevalue.UnmarshalMap(item, &conv); err != nil {
		return nil, pkgerrors.Wrap(err, "dynamoStore.getConversation.Unmarshal")
	}
	return &conv, nil
}

// CreateConversation relies on a conditional put keyed by the pair, so concurrent
// creators converge on the row that won
func (s *DynamoStore) CreateConversation(ctx context.Context, low, high string) (*models.Conversation, error) {
	low, high = models.CanonicalPair(low, high)
	conv := newConversation(uuid.NewString(), low, high, time.Now())

	err := s.Dynamo.PutItemIfAbsent(ctx, models.ConversationsTable, "pairKey", conv)
	if err == nil {
		alias := conv
		alias.PairKey = conversationAliasKey(conv.ConversationID)
		// without the alias, participants are still found through the index
		_ = s.Dynamo.PutItem(ctx, models.ConversationsTable, alias)
		return &conv, nil
	}
	if !errors.Is(err, ErrConditionFailed) {
		return nil, pkgerrors.Wrap(err, "dynamoStore.CreateConversation.PutItem")
	}

	existing, err := s.getConversation(ctx, conv.PairKey, true)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, pkgerrors.New("dynamoStore.CreateConversation: conversation vanished after conflict")
	}
	return existing, nil
}

// GetConversationParticipants reads the alias row with a consistent read and falls back to
// the eventually consistent conversationId index for conversations without one
func (s *DynamoStore) GetConversationParticipants(ctx context.Context, conversationID string) (string, string, error) {
	alias, err := s.getConversation(ctx, conversationAliasKey(conversationID), true)
	if err != nil {
		return "", "", err
	}
	if alias != nil {
		return alias.UserLow, alias.UserHigh, nil
	}

	items, err := s.Dynamo.QueryItemsWithIndex(ctx, models.ConversationsTable, models.ConversationIDIndex,
		"#conversationId = :conversationId",
		map[string]types.AttributeValue{
			":conversationId": &types.AttributeValueMemberS{Value: conversationID},
		},
		map[string]string{"#conversationId": "conversationId"},
		1,
	)
	if err != nil {
		return "", "", pkgerrors.Wrap(err, "dynamoStore.GetConversationParticipants.Query")
	}
	if len(items) == 0 {
		return "", "", ErrConversationNotFound
	}

	var conv models.Conversation
	if err := attributevalue.UnmarshalMap(items[0], &conv); err != nil {
		return "", "", pkgerrors.Wrap(err, "dynamoStore.GetConversationParticipants.Unmarshal")
	}
	return conv.UserLow, conv.UserHigh, nil
}

func (s *DynamoStore) InsertMessage(ctx context.Context, message models.Message) error {
	if message.SortKey == "" {
		message.SortKey = models.MessageSortKey(message.CreatedAt, message.MessageID)
	}
	return pkgerrors.Wrap(s.Dynamo.PutItem(ctx, models.MessagesTable, message), "dynamoStore.InsertMessage.PutItem")
}

func (s *DynamoStore) ListMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	items, err := s.Dynamo.QueryAll(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(models.MessagesTable),
		KeyConditionExpression: aws.String("#conversationId = :conversationId"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":conversationId": &types.AttributeValueMemberS{Value: conversationID},
		},
		ExpressionAttributeNames: map[string]string{"#conversationId": "conversationId"},
		ScanIndexForward:         aws.Bool(true), // oldest first
		ConsistentRead:           aws.Bool(true),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "dynamoStore.ListMessages.Query")
	}

	messages := []models.Message{}
	if err := attributevalue.UnmarshalListOfMaps(items, &messages); err != nil {
		return nil, pkgerrors.Wrap(err, "dynamoStore.ListMessages.Unmarshal")
	}
	return messages, nil
}
