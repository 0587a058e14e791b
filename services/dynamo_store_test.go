package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"vibin_chat/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeDynamo is an in-memory stand-in for the three chat tables. Query pages are
// pageSize items long so that pagination is exercised.
type fakeDynamo struct {
	mu       sync.Mutex
	items    map[string][]map[string]types.AttributeValue
	pageSize int
	putErr   error
	// indexLag makes index queries see nothing, like a GSI that has not caught up yet
	indexLag bool
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: map[string][]map[string]types.AttributeValue{}, pageSize: 2}
}

func attrS(item map[string]types.AttributeValue, name string) string {
	if v, ok := item[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func keyNames(table string) []string {
	if table == models.MessagesTable {
		return []string{"conversationId", "sortKey"}
	}
	return []string{"pairKey"}
}

func sameKey(table string, a, b map[string]types.AttributeValue) bool {
	for _, name := range keyNames(table) {
		if attrS(a, name) != attrS(b, name) {
			return false
		}
	}
	return true
}

func (f *fakeDynamo) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	table := aws.ToString(in.TableName)
	for _, item := range f.items[table] {
		if sameKey(table, item, in.Key) {
			return &dynamodb.GetItemOutput{Item: item}, nil
		}
	}
	return &dynamodb.GetItemOutput{}, nil
}

func (f *fakeDynamo) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.putErr != nil {
		return nil, f.putErr
	}
	table := aws.ToString(in.TableName)
	for i, item := range f.items[table] {
		if sameKey(table, item, in.Item) {
			if in.ConditionExpression != nil {
				return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
			}
			f.items[table][i] = in.Item
			return &dynamodb.PutItemOutput{}, nil
		}
	}
	f.items[table] = append(f.items[table], in.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) Query(ctx context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if in.IndexName != nil && f.indexLag {
		return &dynamodb.QueryOutput{}, nil
	}
	want := attrS(in.ExpressionAttributeValues, ":conversationId")
	var matched []map[string]types.AttributeValue
	for _, item := range f.items[aws.ToString(in.TableName)] {
		if attrS(item, "conversationId") == want {
			matched = append(matched, item)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return attrS(matched[i], "sortKey") < attrS(matched[j], "sortKey") })

	start := 0
	if in.ExclusiveStartKey != nil {
		after := attrS(in.ExclusiveStartKey, "sortKey")
		for start < len(matched) && attrS(matched[start], "sortKey") <= after {
			start++
		}
	}
	end := start + f.pageSize
	if in.Limit != nil && int(*in.Limit) < f.pageSize {
		end = start + int(*in.Limit)
	}
	out := &dynamodb.QueryOutput{}
	if end < len(matched) {
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			"conversationId": matched[end-1]["conversationId"],
			"sortKey":        matched[end-1]["sortKey"],
		}
	} else {
		end = len(matched)
	}
	out.Items = matched[start:end]
	out.Count = int32(len(out.Items))
	return out, nil
}

func newTestDynamoStore() (*DynamoStore, *fakeDynamo) {
	fake := newFakeDynamo()
	return NewDynamoStore(&DynamoService{Client: fake, Logger: zap.NewNop()}), fake
}

func TestDynamoStore_MatchRoundTrip(t *testing.T) {
	store, _ := newTestDynamoStore()
	ctx := context.Background()

	match, err := store.FindMatch(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Nil(t, match)

	require.NoError(t, store.CreateMatch(ctx, models.Match{MatchID: "m1", User1Handle: "bob", User2Handle: "alice"}))
	// matches are immutable, a second create is a no-op
	require.NoError(t, store.CreateMatch(ctx, models.Match{MatchID: "m2", User1Handle: "alice", User2Handle: "bob"}))

	match, err = store.FindMatch(ctx, "alice", "bob")
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "m1", match.MatchID)
	assert.Equal(t, "5:alice#bob", match.PairKey)
}

func TestDynamoStore_CreateConversationConvergesOnConflict(t *testing.T) {
	store, fake := newTestDynamoStore()
	ctx := context.Background()

	first, err := store.CreateConversation(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", first.UserLow)
	assert.Equal(t, "bob", first.UserHigh)

	second, err := store.CreateConversation(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, first.ConversationID, second.ConversationID)
	// one pair row plus its id alias
	assert.Len(t, fake.items[models.ConversationsTable], 2)

	found, err := store.FindConversation(ctx, "alice", "bob")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, first.ConversationID, found.ConversationID)
}

func TestDynamoStore_Participants(t *testing.T) {
	store, _ := newTestDynamoStore()
	ctx := context.Background()

	conv, err := store.CreateConversation(ctx, "alice", "bob")
	require.NoError(t, err)

	a, b, err := store.GetConversationParticipants(ctx, conv.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, "alice", a)
	assert.Equal(t, "bob", b)

	_, _, err = store.GetConversationParticipants(ctx, "nope")
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestDynamoStore_ParticipantsVisibleBeforeIndexCatchesUp(t *testing.T) {
	store, fake := newTestDynamoStore()
	fake.indexLag = true
	ctx := context.Background()

	conv, err := store.CreateConversation(ctx, "bob", "alice")
	require.NoError(t, err)

	a, b, err := store.GetConversationParticipants(ctx, conv.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, "alice", a)
	assert.Equal(t, "bob", b)
}

func TestDynamoStore_ParticipantsFallBackToIndex(t *testing.T) {
	store, _ := newTestDynamoStore()
	ctx := context.Background()

	// a row written without its id alias
	legacy := newConversation("conv-legacy", "carol", "dave", time.Now())
	require.NoError(t, store.Dynamo.PutItem(ctx, models.ConversationsTable, legacy))

	a, b, err := store.GetConversationParticipants(ctx, "conv-legacy")
	require.NoError(t, err)
	assert.Equal(t, "carol", a)
	assert.Equal(t, "dave", b)
}

func TestDynamoStore_ListMessagesOrderedAcrossPages(t *testing.T) {
	store, _ := newTestDynamoStore()
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	offsets := []time.Duration{3 * time.Second, time.Second, 4 * time.Second, 0, 2 * time.Second}
	for i, off := range offsets {
		require.NoError(t, store.InsertMessage(ctx, models.Message{
			ConversationID: "conv-1",
			MessageID:      string(rune('a' + i)),
			SenderID:       "alice",
			Content:        off.String(),
			CreatedAt:      base.Add(off),
		}))
	}
	require.NoError(t, store.InsertMessage(ctx, models.Message{ConversationID: "conv-2", MessageID: "z", CreatedAt: base}))

	messages, err := store.ListMessages(ctx, "conv-1")
	require.NoError(t, err)
	require.Len(t, messages, len(offsets))
	for i := 1; i < len(messages); i++ {
		assert.True(t, messages[i-1].CreatedAt.Before(messages[i].CreatedAt))
	}
	assert.Equal(t, "d", messages[0].MessageID)
}

func TestDynamoStore_WrapsDriverErrors(t *testing.T) {
	store, fake := newTestDynamoStore()
	fake.putErr = errors.New("ProvisionedThroughputExceeded")

	err := store.InsertMessage(context.Background(), models.Message{ConversationID: "c", MessageID: "m", CreatedAt: time.Now()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dynamoStore.InsertMessage.PutItem")
}
