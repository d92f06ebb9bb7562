package templates

import (
	"context"
	"errors"
	"testing"

	"github.com/gitshopapp/orderreceipt/internal/models"
	"github.com/gitshopapp/orderreceipt/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	provider, err := storage.NewMemoryProvider()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return NewStore(provider)
}

func TestStore_DefaultsWhenEmpty(t *testing.T) {
	t.Parallel()

	list, err := newTestStore(t).List(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(list) != 1 || list[0].ID != DefaultTemplateID {
		t.Fatalf("expected default template, got %+v", list)
	}
	if !list[0].ShowVAT || len(list[0].TermsAndConditions) != 3 {
		t.Fatalf("unexpected default template: %+v", list[0])
	}
}

func TestStore_SaveUpsertsByID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)

	blue := models.ReceiptTemplate{ID: "blue", Name: "Blue", PrimaryColor: "#0000FF", SecondaryColor: "#111111"}
	if err := store.Save(ctx, blue); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	blue.Name = "Navy"
	if err := store.Save(ctx, blue); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected default plus one template, got %d", len(list))
	}

	got, err := store.Get(ctx, "blue")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.Name != "Navy" {
		t.Fatalf("expected updated name Navy, got %q", got.Name)
	}
}

func TestStore_Delete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)

	if err := store.Delete(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Save(ctx, models.ReceiptTemplate{ID: "green", Name: "Green", PrimaryColor: "#00FF00", SecondaryColor: "#000"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := store.Delete(ctx, "green"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := store.Get(ctx, "green"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestParser_Parse(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
	}{
		{
			name: "valid file",
			yaml: `
company:
  name: "My FBA Business"
  address: ["456 Commerce Road", "Manchester"]
  vat_number: "GB987654321"
templates:
  - id: "blue"
    name: "Blue"
    primary_color: "#0000FF"
    secondary_color: "#333333"
    show_vat: false
    terms_and_conditions:
      - "No returns."
`,
			wantErr: false,
		},
		{
			name:    "invalid yaml",
			yaml:    "invalid: yaml: content:",
			wantErr: true,
		},
	}

	parser := NewParser()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := parser.ParseFromString(tt.yaml)

			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			if file.Company == nil || file.Company.VATNumber != "GB987654321" {
				t.Errorf("expected company VAT number, got %+v", file.Company)
			}

			if len(file.Templates) != 1 || file.Templates[0].ShowVAT {
				t.Errorf("unexpected templates: %+v", file.Templates)
			}
		})
	}
}
