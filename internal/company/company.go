// Package company stores the seller profile printed on receipts.
package company

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gitshopapp/orderreceipt/internal/models"
	"github.com/gitshopapp/orderreceipt/internal/storage"
)

// Default is the profile shown until the seller saves their own.
func Default() models.CompanyDetails {
	return models.CompanyDetails{
		Name:          "My FBA Business",
		Address:       []string{"456 Commerce Road", "Manchester", "M1 1BB", "United Kingdom"},
		VATNumber:     "GB987654321",
		CompanyNumber: "87654321",
		Email:         "contact@myfba.com",
		Website:       "www.myfba.com",
	}
}

type Store struct {
	provider storage.Provider
}

func NewStore(provider storage.Provider) *Store {
	return &Store{provider: provider}
}

func (s *Store) Get(ctx context.Context) (*models.CompanyDetails, error) {
	raw, err := s.provider.Get(ctx, storage.KeyCompanyDetails)
	if errors.Is(err, storage.ErrNotFound) {
		details := Default()
		return &details, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load company details: %w", err)
	}

	var details models.CompanyDetails
	if err := json.Unmarshal([]byte(raw), &details); err != nil {
		return nil, fmt.Errorf("failed to decode company details: %w", err)
	}
	return &details, nil
}

func (s *Store) Save(ctx context.Context, details *models.CompanyDetails) error {
	raw, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to encode company details: %w", err)
	}
	if err := s.provider.Set(ctx, storage.KeyCompanyDetails, string(raw)); err != nil {
		return fmt.Errorf("failed to save company details: %w", err)
	}
	return nil
}
