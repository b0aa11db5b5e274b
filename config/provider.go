package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Environment represents the application environment
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// ErrKeyNotSet is returned when a configuration key has no value
var ErrKeyNotSet = errors.New("configuration key not set")

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Provider defines the interface for configuration management
type Provider interface {
	// GetString retrieves a string configuration value
	GetString(ctx context.Context, key string) (string, error)
	// GetInt retrieves an integer configuration value
	GetInt(ctx context.Context, key string) (int, error)
	// GetBool retrieves a boolean configuration value
	GetBool(ctx context.Context, key string) (bool, error)
	// GetSecret retrieves a secret value
	GetSecret(ctx context.Context, key string) (string, error)
	// GetEnvironment returns the current environment
	GetEnvironment() Environment
}

// currentEnvironment reads APP_ENV, defaulting to development
func currentEnvironment() Environment {
	env := os.Getenv("APP_ENV")
	if env == "" {
		return Development
	}
	return Environment(env)
}

// EnvProvider implements Provider using environment variables
type EnvProvider struct {
	prefix      string
	environment Environment
}

// NewEnvProvider creates a new environment-based configuration provider
func NewEnvProvider(prefix string) Provider {
	return &EnvProvider{
		prefix:      prefix,
		environment: currentEnvironment(),
	}
}

// GetEnvironment returns the current environment
func (p *EnvProvider) GetEnvironment() Environment {
	return p.environment
}

// GetString retrieves a string configuration value from environment variables
func (p *EnvProvider) GetString(ctx context.Context, key string) (string, error) {
	value := os.Getenv(p.prefix + key)
	if value == "" {
		return "", fmt.Errorf("environment variable %s%s: %w", p.prefix, key, ErrKeyNotSet)
	}
	return value, nil
}

// GetInt retrieves an integer configuration value from environment variables
func (p *EnvProvider) GetInt(ctx context.Context, key string) (int, error) {
	value, err := p.GetString(ctx, key)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(value)
}

// GetBool retrieves a boolean configuration value from environment variables
func (p *EnvProvider) GetBool(ctx context.Context, key string) (bool, error) {
	value, err := p.GetString(ctx, key)
	if err != nil {
		return false, err
	}
	return strconv.ParseBool(value)
}

// GetSecret retrieves a secret value from environment variables
func (p *EnvProvider) GetSecret(ctx context.Context, key string) (string, error) {
	return p.GetString(ctx, key)
}

// NewProviderFromEnv picks the provider named by CONFIG_SOURCE ("env" or "aws")
func NewProviderFromEnv(ctx context.Context) (Provider, error) {
	switch source := os.Getenv("CONFIG_SOURCE"); source {
	case "", "env":
		return NewEnvProvider(""), nil
	case "aws":
		return NewAWSConfigProvider(ctx)
	default:
		return nil, &ValidationError{Field: "CONFIG_SOURCE", Message: fmt.Sprintf("unknown configuration source %q", source)}
	}
}

// stringOr returns the value for key, or def when the key is not set
func stringOr(ctx context.Context, p Provider, key, def string) string {
	value, err := p.GetString(ctx, key)
	if err != nil || value == "" {
		return def
	}
	return value
}

func intOr(ctx context.Context, p Provider, key string, def int) (int, error) {
	if _, err := p.GetString(ctx, key); err != nil {
		return def, nil
	}
	value, err := p.GetInt(ctx, key)
	if err != nil {
		return 0, &ValidationError{Field: key, Message: "must be a valid integer"}
	}
	return value, nil
}

func boolOr(ctx context.Context, p Provider, key string, def bool) (bool, error) {
	if _, err := p.GetString(ctx, key); err != nil {
		return def, nil
	}
	value, err := p.GetBool(ctx, key)
	if err != nil {
		return false, &ValidationError{Field: key, Message: "must be a valid boolean"}
	}
	return value, nil
}

func durationOr(ctx context.Context, p Provider, key string, def time.Duration) (time.Duration, error) {
	raw, err := p.GetString(ctx, key)
	if err != nil {
		return def, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, &ValidationError{Field: key, Message: "must be a valid duration"}
	}
	return value, nil
}
