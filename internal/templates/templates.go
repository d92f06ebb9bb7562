// Package templates stores receipt templates.
package templates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/gitshopapp/orderreceipt/internal/models"
	"github.com/gitshopapp/orderreceipt/internal/storage"
)

const DefaultTemplateID = "default"

var ErrNotFound = errors.New("template not found")

// Default returns the built-in template used when nothing has been stored.
func Default() models.ReceiptTemplate {
	return models.ReceiptTemplate{
		ID:             DefaultTemplateID,
		Name:           "Default Template",
		PrimaryColor:   "#E43B3B",
		SecondaryColor: "#333333",
		ShowVAT:        true,
		TermsAndConditions: []string{
			"Thank you for your purchase.",
			"This receipt is proof of purchase and may be required for warranty claims.",
			"Returns and exchanges must be made within 30 days of purchase.",
		},
	}
}

type Store struct {
	provider storage.Provider
	mu       sync.Mutex
}

func NewStore(provider storage.Provider) *Store {
	return &Store{provider: provider}
}

// List returns the stored templates, or the built-in default when none are stored.
func (s *Store) List(ctx context.Context) ([]models.ReceiptTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Store) Get(ctx context.Context, id string) (*models.ReceiptTemplate, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range list {
		if t.ID == id {
			found := t
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

// Save replaces the template with the same ID or appends a new one.
func (s *Store) Save(ctx context.Context, template models.ReceiptTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for i := range list {
		if list[i].ID == template.ID {
			list[i] = template
			replaced = true
			break
		}
	}
	if !replaced {
		list = append(list, template)
	}
	return s.store(ctx, list)
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		return err
	}
	kept := make([]models.ReceiptTemplate, 0, len(list))
	for _, t := range list {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(list) {
		return ErrNotFound
	}
	return s.store(ctx, kept)
}

func (s *Store) load(ctx context.Context) ([]models.ReceiptTemplate, error) {
	raw, err := s.provider.Get(ctx, storage.KeyTemplates)
	if errors.Is(err, storage.ErrNotFound) {
		return []models.ReceiptTemplate{Default()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	var list []models.ReceiptTemplate
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("failed to decode templates: %w", err)
	}
	return list, nil
}

func (s *Store) store(ctx context.Context, list []models.ReceiptTemplate) error {
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to encode templates: %w", err)
	}
	if err := s.provider.Set(ctx, storage.KeyTemplates, string(raw)); err != nil {
		return fmt.Errorf("failed to save templates: %w", err)
	}
	return nil
}
