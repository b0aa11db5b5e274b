// Package cache holds the read-through forest cache used by the request layer.
// Every write to the store must be followed by Invalidate.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/ammiranda/forest_service/config"
	"github.com/ammiranda/forest_service/models"

	"go.uber.org/zap"
)

// DefaultTTL is used until SetTTL is called
const DefaultTTL = 5 * time.Minute

// Provider defines the interface for forest cache implementations.
type Provider interface {
	// GetForest retrieves the cached forest if present and not expired.
	// Returns:
	//   - The cached forest
	//   - A boolean indicating whether the forest was found in cache
	GetForest(ctx context.Context) ([]*models.Node, bool)

	// SetForest stores the forest in cache with the current TTL.
	SetForest(ctx context.Context, forest []*models.Node)

	// Invalidate removes the cached forest.
	// This must be called whenever the tree structure is modified.
	Invalidate(ctx context.Context)

	// SetTTL sets the time-to-live applied to subsequent SetForest calls.
	SetTTL(ttl time.Duration)

	// Initialize performs any necessary setup for the cache provider, such as
	// establishing connections or creating tables.
	Initialize(ctx context.Context) error
}

// New builds and initializes the provider selected by cfg
func New(ctx context.Context, cfg config.CacheConfig, log *zap.Logger) (Provider, error) {
	var p Provider
	switch cfg.Provider {
	case config.CacheNone:
		p = NoopCache{}
	case config.CacheMemory, "":
		p = NewMemoryCache()
	case config.CacheRedis:
		p = NewRedisCache(cfg.RedisAddr)
	case config.CacheDynamoDB:
		d, err := NewDynamoDBCache(ctx, log)
		if err != nil {
			return nil, fmt.Errorf("error creating dynamodb cache: %w", err)
		}
		p = d
	default:
		return nil, fmt.Errorf("unsupported cache provider %q", cfg.Provider)
	}

	if cfg.TTL > 0 {
		p.SetTTL(cfg.TTL)
	}
	if err := p.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("error initializing %s cache: %w", cfg.Provider, err)
	}
	return p, nil
}

// NoopCache never stores anything
type NoopCache struct{}

func (NoopCache) GetForest(context.Context) ([]*models.Node, bool) { return nil, false }
func (NoopCache) SetForest(context.Context, []*models.Node)        {}
func (NoopCache) Invalidate(context.Context)                       {}
func (NoopCache) SetTTL(time.Duration)                             {}
func (NoopCache) Initialize(context.Context) error                 { return nil }
