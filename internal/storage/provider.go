// Package storage provides the key-value persistence used for order history,
// receipt templates and the company profile.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var ErrNotFound = errors.New("key not found")

// Provider is a string key-value store.
type Provider interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

type Config struct {
	Provider              string
	RedisConnectionString string
	DatabaseURL           string
	Logger                *slog.Logger
}

func NewProvider(ctx context.Context, cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "memory", "":
		return NewMemoryProvider()
	case "redis":
		return NewRedisProvider(ctx, cfg.RedisConnectionString)
	case "postgres":
		return NewPostgresProvider(ctx, cfg.DatabaseURL, cfg.Logger)
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", cfg.Provider)
	}
}

const (
	KeyOrderHistory   = "orders"
	KeyTemplates      = "templates"
	KeyCompanyDetails = "company"
)
