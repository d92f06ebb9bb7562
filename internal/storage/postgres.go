package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gitshopapp/orderreceipt/internal/db"
)

type PostgresProvider struct {
	pool *pgxpool.Pool
}

func NewPostgresProvider(ctx context.Context, databaseURL string, logger *slog.Logger) (*PostgresProvider, error) {
	pool, err := db.Connect(ctx, databaseURL, logger)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresProvider{pool: pool}, nil
}

func (p *PostgresProvider) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := p.pool.QueryRow(ctx, db.QueryGetValue, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return value, nil
}

func (p *PostgresProvider) Set(ctx context.Context, key string, value string) error {
	if _, err := p.pool.Exec(ctx, db.QueryUpsertValue, key, value); err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}

func (p *PostgresProvider) Delete(ctx context.Context, key string) error {
	if _, err := p.pool.Exec(ctx, db.QueryDeleteValue, key); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

func (p *PostgresProvider) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *PostgresProvider) Close() error {
	p.pool.Close()
	return nil
}
