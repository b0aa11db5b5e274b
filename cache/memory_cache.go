package cache

import (
	"context"
	"sync"
	"time"

	"github.com/ammiranda/forest_service/models"
)

// MemoryCache implements Provider using in-process storage
type MemoryCache struct {
	mu     sync.RWMutex
	forest []*models.Node
	ttl    time.Duration
	expiry time.Time
	now    func() time.Time
}

// NewMemoryCache creates a new in-memory cache provider
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		ttl: DefaultTTL,
		now: time.Now,
	}
}

// Initialize performs any necessary setup for the cache provider
func (c *MemoryCache) Initialize(ctx context.Context) error {
	return nil
}

// GetForest retrieves the forest from cache if available
func (c *MemoryCache) GetForest(ctx context.Context) ([]*models.Node, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.forest == nil || c.now().After(c.expiry) {
		return nil, false
	}
	return c.forest, true
}

// SetForest stores the forest in cache
func (c *MemoryCache) SetForest(ctx context.Context, forest []*models.Node) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.forest = forest
	c.expiry = c.now().Add(c.ttl)
}

// Invalidate removes the cached forest
func (c *MemoryCache) Invalidate(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.forest = nil
	c.expiry = time.Time{}
}

// SetTTL sets the cache time-to-live duration
func (c *MemoryCache) SetTTL(ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ttl = ttl
}
