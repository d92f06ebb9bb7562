package storage

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

type MemoryProvider struct {
	cache *lru.Cache[string, string]
}

const defaultMemoryStoreSize = 10_000

func NewMemoryProvider() (*MemoryProvider, error) {
	c, err := lru.New[string, string](defaultMemoryStoreSize)
	if err != nil {
		return nil, err
	}
	return &MemoryProvider{cache: c}, nil
}

func (m *MemoryProvider) Get(ctx context.Context, key string) (string, error) {
	_ = ctx
	value, exists := m.cache.Get(key)
	if !exists {
		return "", ErrNotFound
	}
	return value, nil
}

func (m *MemoryProvider) Set(ctx context.Context, key string, value string) error {
	_ = ctx
	m.cache.Add(key, value)
	return nil
}

func (m *MemoryProvider) Delete(ctx context.Context, key string) error {
	_ = ctx
	m.cache.Remove(key)
	return nil
}

func (m *MemoryProvider) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *MemoryProvider) Close() error {
	return nil
}
