package config

import (
	"context"
	"fmt"
	"time"
)

// Store drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Cache providers
const (
	CacheNone     = "none"
	CacheMemory   = "memory"
	CacheRedis    = "redis"
	CacheDynamoDB = "dynamodb"
)

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port           int
	RequestTimeout time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
}

// CacheConfig selects and tunes the forest cache
type CacheConfig struct {
	Provider  string
	TTL       time.Duration
	RedisAddr string
}

// AppConfig is the full service configuration
type AppConfig struct {
	Environment Environment
	Server      ServerConfig
	Cache       CacheConfig
	StoreDriver string
	SQLitePath  string
	LogDebug    bool
	// Database is only populated when StoreDriver is postgres
	Database *DatabaseConfig
}

// Load reads the service configuration from provider, applying defaults
func Load(ctx context.Context, provider Provider) (*AppConfig, error) {
	cfg := &AppConfig{
		Environment: provider.GetEnvironment(),
		StoreDriver: stringOr(ctx, provider, "STORE_DRIVER", DriverSQLite),
		SQLitePath:  stringOr(ctx, provider, "SQLITE_PATH", ""),
		Cache: CacheConfig{
			Provider:  stringOr(ctx, provider, "CACHE_PROVIDER", CacheMemory),
			RedisAddr: stringOr(ctx, provider, "REDIS_ADDR", "localhost:6379"),
		},
	}

	var err error
	if cfg.Server.Port, err = intOr(ctx, provider, "PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.Server.RequestTimeout, err = durationOr(ctx, provider, "REQUEST_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	rps, err := intOr(ctx, provider, "RATE_LIMIT_RPS", 10)
	if err != nil {
		return nil, err
	}
	cfg.Server.RateLimitRPS = float64(rps)
	if cfg.Server.RateLimitBurst, err = intOr(ctx, provider, "RATE_LIMIT_BURST", 20); err != nil {
		return nil, err
	}
	if cfg.Cache.TTL, err = durationOr(ctx, provider, "CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.LogDebug, err = boolOr(ctx, provider, "LOG_DEBUG", false); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.StoreDriver == DriverPostgres {
		if cfg.Database, err = GetDatabaseConfig(ctx, provider); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Validate checks the non-database settings
func (c *AppConfig) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return &ValidationError{Field: "PORT", Message: "port must be between 1 and 65535"}
	}
	if c.Server.RequestTimeout <= 0 {
		return &ValidationError{Field: "REQUEST_TIMEOUT", Message: "timeout must be positive"}
	}
	if c.Server.RateLimitRPS <= 0 || c.Server.RateLimitBurst <= 0 {
		return &ValidationError{Field: "RATE_LIMIT_RPS", Message: "rate limit must be positive"}
	}
	switch c.StoreDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return &ValidationError{Field: "STORE_DRIVER", Message: fmt.Sprintf("unsupported store driver %q", c.StoreDriver)}
	}
	switch c.Cache.Provider {
	case CacheNone, CacheMemory, CacheRedis, CacheDynamoDB:
	default:
		return &ValidationError{Field: "CACHE_PROVIDER", Message: fmt.Sprintf("unsupported cache provider %q", c.Cache.Provider)}
	}
	if c.Cache.TTL <= 0 {
		return &ValidationError{Field: "CACHE_TTL", Message: "ttl must be positive"}
	}
	return nil
}

// Addr returns the listen address for the HTTP server
func (c *AppConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
