// Package history keeps the most recent extracted orders, newest first.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/gitshopapp/orderreceipt/internal/models"
	"github.com/gitshopapp/orderreceipt/internal/storage"
)

const DefaultLimit = 100

var (
	ErrNotFound = errors.New("order not found in history")
	ErrCorrupt  = errors.New("stored order history is corrupt")
)

// Store persists the history list as one JSON document under a single key.
type Store struct {
	provider storage.Provider
	limit    int
	mu       sync.Mutex
}

func NewStore(provider storage.Provider, limit int) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Store{provider: provider, limit: limit}
}

// Save prepends order to the history, evicting the oldest entries beyond the limit.
func (s *Store) Save(ctx context.Context, order *models.OrderRecord) error {
	if order == nil {
		return fmt.Errorf("order is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	orders, err := s.load(ctx)
	if err != nil {
		return err
	}

	next := make([]*models.OrderRecord, 0, min(len(orders)+1, s.limit))
	next = append(next, order.Clone())
	for _, existing := range orders {
		if len(next) >= s.limit {
			break
		}
		next = append(next, existing)
	}

	return s.store(ctx, next)
}

// List returns the history, most recent first.
func (s *Store) List(ctx context.Context) ([]*models.OrderRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Find returns a copy of the most recent entry with the given order ID.
func (s *Store) Find(ctx context.Context, orderID string) (*models.OrderRecord, error) {
	orders, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, order := range orders {
		if order.OrderID == orderID {
			return order.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

// Update replaces the most recent entry for orderID with the record returned by
// edit. edit receives a copy, and the entry keeps its position in the history.
func (s *Store) Update(ctx context.Context, orderID string, edit func(order *models.OrderRecord) (*models.OrderRecord, error)) (*models.OrderRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for idx, existing := range orders {
		if existing.OrderID != orderID {
			continue
		}
		edited, err := edit(existing.Clone())
		if err != nil {
			return nil, err
		}
		if edited == nil || edited.OrderID != orderID {
			return nil, fmt.Errorf("edit of order %s changed its id", orderID)
		}
		orders[idx] = edited.Clone()
		if err := s.store(ctx, orders); err != nil {
			return nil, err
		}
		return edited, nil
	}
	return nil, ErrNotFound
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.provider.Delete(ctx, storage.KeyOrderHistory)
}

func (s *Store) load(ctx context.Context) ([]*models.OrderRecord, error) {
	raw, err := s.provider.Get(ctx, storage.KeyOrderHistory)
	if errors.Is(err, storage.ErrNotFound) {
		return []*models.OrderRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order history: %w", err)
	}

	var orders []*models.OrderRecord
	if err := json.Unmarshal([]byte(raw), &orders); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if orders == nil {
		orders = []*models.OrderRecord{}
	}
	return orders, nil
}

func (s *Store) store(ctx context.Context, orders []*models.OrderRecord) error {
	raw, err := json.Marshal(orders)
	if err != nil {
		return fmt.Errorf("failed to encode order history: %w", err)
	}
	if err := s.provider.Set(ctx, storage.KeyOrderHistory, string(raw)); err != nil {
		return fmt.Errorf("failed to save order history: %w", err)
	}
	return nil
}
