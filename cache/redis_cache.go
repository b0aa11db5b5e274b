package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/ammiranda/forest_service/models"

	"github.com/redis/go-redis/v9"
)

const redisKey = "forest"

// RedisCache implements Provider using Redis. Expiry is delegated to the
// key TTL.
type RedisCache struct {
	client *redis.Client
	mu     sync.RWMutex
	ttl    time.Duration
}

// NewRedisCache creates a new Redis cache provider for addr (host:port)
func NewRedisCache(addr string) *RedisCache {
	if addr == "" {
		addr = "localhost:6379"
	}
	return NewRedisCacheWithClient(redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	}))
}

// NewRedisCacheWithClient creates a Redis cache provider with a custom client
func NewRedisCacheWithClient(client *redis.Client) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    DefaultTTL,
	}
}

// Initialize checks that the server is reachable
func (c *RedisCache) Initialize(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// GetForest retrieves the forest from cache if available
func (c *RedisCache) GetForest(ctx context.Context) ([]*models.Node, bool) {
	data, err := c.client.Get(ctx, redisKey).Bytes()
	if err != nil {
		return nil, false
	}

	var forest []*models.Node
	if err := json.Unmarshal(data, &forest); err != nil {
		return nil, false
	}
	return forest, true
}

// SetForest stores the forest in cache
func (c *RedisCache) SetForest(ctx context.Context, forest []*models.Node) {
	data, err := json.Marshal(forest)
	if err != nil {
		return
	}

	c.mu.RLock()
	ttl := c.ttl
	c.mu.RUnlock()
	c.client.Set(ctx, redisKey, data, ttl)
}

// Invalidate removes the forest from cache
func (c *RedisCache) Invalidate(ctx context.Context) {
	c.client.Del(ctx, redisKey)
}

// SetTTL sets the cache time-to-live duration
func (c *RedisCache) SetTTL(ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ttl = ttl
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
