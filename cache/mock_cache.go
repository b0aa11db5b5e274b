package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ammiranda/forest_service/models"
)

// ErrCacheInitialization is returned when the mock cache is configured to fail
var ErrCacheInitialization = errors.New("mock cache initialization failed")

// CallCounts records how often each MockCache method ran
type CallCounts struct {
	Get        int
	Set        int
	Invalidate int
	SetTTL     int
	Init       int
}

// MockCache is a cache provider that can be used for testing
type MockCache struct {
	mu         sync.RWMutex
	forest     []*models.Node
	ttl        time.Duration
	expiry     time.Time
	calls      CallCounts
	shouldFail bool
}

// NewMockCache creates a new mock cache provider
func NewMockCache() *MockCache {
	return &MockCache{ttl: DefaultTTL}
}

// Initialize performs any necessary setup for the cache provider
func (c *MockCache) Initialize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls.Init++
	if c.shouldFail {
		return ErrCacheInitialization
	}
	return nil
}

// GetForest retrieves the forest from cache if available
func (c *MockCache) GetForest(ctx context.Context) ([]*models.Node, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls.Get++

	if c.shouldFail || c.forest == nil || time.Now().After(c.expiry) {
		return nil, false
	}
	return c.forest, true
}

// SetForest stores the forest in cache
func (c *MockCache) SetForest(ctx context.Context, forest []*models.Node) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls.Set++

	if !c.shouldFail {
		c.forest = forest
		c.expiry = time.Now().Add(c.ttl)
	}
}

// Invalidate removes the forest from cache
func (c *MockCache) Invalidate(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls.Invalidate++

	if !c.shouldFail {
		c.forest = nil
		c.expiry = time.Time{}
	}
}

// SetTTL sets the cache time-to-live duration
func (c *MockCache) SetTTL(ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls.SetTTL++

	if !c.shouldFail {
		c.ttl = ttl
	}
}

// Reset resets all counters and state
func (c *MockCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = CallCounts{}
	c.shouldFail = false
	c.forest = nil
	c.expiry = time.Time{}
	c.ttl = DefaultTTL
}

// Calls returns the number of times each method was called
func (c *MockCache) Calls() CallCounts {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.calls
}

// SetShouldFail makes the mock cache fail all operations
func (c *MockCache) SetShouldFail(shouldFail bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shouldFail = shouldFail
}
