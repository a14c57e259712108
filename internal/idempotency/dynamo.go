package idempotency

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// DynamoDBAPI is the subset of the DynamoDB client the cache uses.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error)
	PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dyn.DeleteItemInput, optFns ...func(*dyn.Options)) (*dyn.DeleteItemOutput, error)
}

// dynamoRecord is the item shape in the idempotency table. The partition key
// scopes the client key to its merchant; expires_at doubles as the table's
// TTL attribute so DynamoDB eventually reaps what Get treats as absent.
type dynamoRecord struct {
	CacheKey  string `dynamodbav:"cache_key"` // PK: "<merchant id>:<client key>"
	Response  string `dynamodbav:"response"`
	CreatedAt int64  `dynamodbav:"created_at"`
	ExpiresAt int64  `dynamodbav:"expires_at"` // TTL epoch seconds
}

// DynamoCache implements Cache against a DynamoDB table.
type DynamoCache struct {
	client    DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

func NewDynamoCache(client DynamoDBAPI, tableName string) *DynamoCache {
	return &DynamoCache{client: client, tableName: tableName, nowFunc: time.Now}
}

func cacheKey(merchantID uuid.UUID, key string) string {
	return merchantID.String() + ":" + key
}

func (c *DynamoCache) Get(ctx context.Context, merchantID uuid.UUID, key string) (json.RawMessage, error) {
	pk := cacheKey(merchantID, key)
	out, err := c.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &c.tableName,
		Key: map[string]types.AttributeValue{
			"cache_key": &types.AttributeValueMemberS{Value: pk},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var rec dynamoRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	// DynamoDB TTL reaping is lazy; enforce expiry on read.
	if rec.ExpiresAt <= c.nowFunc().Unix() {
		_, _ = c.client.DeleteItem(ctx, &dyn.DeleteItemInput{
			TableName: &c.tableName,
			Key: map[string]types.AttributeValue{
				"cache_key": &types.AttributeValueMemberS{Value: pk},
			},
		})
		return nil, nil
	}
	return json.RawMessage(rec.Response), nil
}

func (c *DynamoCache) Put(ctx context.Context, merchantID uuid.UUID, key string, response json.RawMessage, ttl time.Duration) error {
	now := c.nowFunc()
	rec := dynamoRecord{
		CacheKey:  cacheKey(merchantID, key),
		Response:  string(response),
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
	}
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if _, err := c.client.PutItem(ctx, &dyn.PutItemInput{
		TableName: &c.tableName,
		Item:      item,
	}); err != nil {
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}
