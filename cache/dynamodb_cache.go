package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/ammiranda/forest_service/logger"
	"github.com/ammiranda/forest_service/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

const (
	tableName   = "ForestCache"
	dynamoDBKey = "forest"
)

// DynamoDBAPI defines the interface for DynamoDB operations
type DynamoDBAPI interface {
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// cacheItem is the stored row. The forest is kept as a JSON document.
type cacheItem struct {
	Key       string `dynamodbav:"key"`
	Data      string `dynamodbav:"data"`
	Timestamp int64  `dynamodbav:"timestamp"`
	TTL       int64  `dynamodbav:"ttl"`
}

// DynamoDBCache implements Provider using DynamoDB
type DynamoDBCache struct {
	client DynamoDBAPI
	log    *zap.Logger
	mu     sync.RWMutex
	ttl    time.Duration
	now    func() time.Time
}

// NewDynamoDBCache creates a DynamoDB cache provider from the default AWS config
func NewDynamoDBCache(ctx context.Context, log *zap.Logger) (*DynamoDBCache, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return NewDynamoDBCacheWithClient(dynamodb.NewFromConfig(cfg), log), nil
}

// NewDynamoDBCacheWithClient creates a DynamoDB cache provider with a custom client
func NewDynamoDBCacheWithClient(client DynamoDBAPI, log *zap.Logger) *DynamoDBCache {
	return &DynamoDBCache{
		client: client,
		log:    logger.OrNop(log),
		ttl:    DefaultTTL,
		now:    time.Now,
	}
}

// Initialize creates the cache table if it doesn't exist
func (c *DynamoDBCache) Initialize(ctx context.Context) error {
	_, err := c.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(tableName),
	})
	if err == nil {
		return nil
	}
	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return err
	}

	_, err = c.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(tableName),
		AttributeDefinitions: []types.AttributeDefinition{
			{
				AttributeName: aws.String("key"),
				AttributeType: types.ScalarAttributeTypeS,
			},
		},
		KeySchema: []types.KeySchemaElement{
			{
				AttributeName: aws.String("key"),
				KeyType:       types.KeyTypeHash,
			},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	return err
}

// GetForest retrieves the forest from DynamoDB if available
func (c *DynamoDBCache) GetForest(ctx context.Context) ([]*models.Node, bool) {
	result, err := c.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(tableName),
		Key:       itemKey(),
	})
	if err != nil {
		c.log.Warn("dynamodb cache read failed", zap.Error(err))
		return nil, false
	}
	if result.Item == nil {
		return nil, false
	}

	var item cacheItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, false
	}

	// DynamoDB TTL deletion is lazy, so expiry is checked here as well
	if c.now().Unix() > item.TTL {
		c.Invalidate(ctx)
		return nil, false
	}

	var forest []*models.Node
	if err := json.Unmarshal([]byte(item.Data), &forest); err != nil {
		return nil, false
	}
	return forest, true
}

// SetForest stores the forest in DynamoDB
func (c *DynamoDBCache) SetForest(ctx context.Context, forest []*models.Node) {
	data, err := json.Marshal(forest)
	if err != nil {
		c.Invalidate(ctx)
		return
	}

	c.mu.RLock()
	ttl := c.ttl
	c.mu.RUnlock()

	now := c.now()
	av, err := attributevalue.MarshalMap(cacheItem{
		Key:       dynamoDBKey,
		Data:      string(data),
		Timestamp: now.Unix(),
		TTL:       now.Add(ttl).Unix(),
	})
	if err != nil {
		c.Invalidate(ctx)
		return
	}

	if _, err := c.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(tableName),
		Item:      av,
	}); err != nil {
		c.log.Warn("dynamodb cache write failed", zap.Error(err))
		c.Invalidate(ctx)
	}
}

// Invalidate removes the forest from DynamoDB
func (c *DynamoDBCache) Invalidate(ctx context.Context) {
	if _, err := c.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(tableName),
		Key:       itemKey(),
	}); err != nil {
		c.log.Warn("dynamodb cache invalidation failed", zap.Error(err))
	}
}

// SetTTL sets the cache time-to-live duration
func (c *DynamoDBCache) SetTTL(ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ttl = ttl
}

func itemKey() map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"key": &types.AttributeValueMemberS{Value: dynamoDBKey},
	}
}
