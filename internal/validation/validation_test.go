package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/gitshopapp/orderreceipt/internal/models"
	"github.com/gitshopapp/orderreceipt/internal/parser"
)

func completeOrder() *models.OrderRecord {
	order := models.NewOrderRecord()
	order.OrderID = "206-8888888-1111111"
	order.PurchaseDate = "Fri, 9 May 2025"
	order.PurchaseTime = "12:00"
	order.Customer.Name = "Steven Steve"
	order.Customer.Address = []string{"123 Amazon Lane", "Texas"}
	order.Items = []models.LineItem{
		models.NewLineItem("Pencil", "B09MXXXXXX", "AM-AMZN-XXXX", 2, 2.99),
		models.NewPromotion(1.00),
	}
	order.Totals.Shipping = 3.5
	order.Recalculate()
	return order
}

func TestShape_AcceptsExtractorOutput(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"Promotion:-£5.00",
		"ASIN: A1\nASIN: A2",
		"Order ID: 206-8888888-1111111\nThing\nASIN: X\nSKU: Y\n3 £1.10\nShipping total:£2.00",
	}

	v := New()
	for _, text := range inputs {
		order, err := parser.ExtractFromString(text)
		if err != nil {
			t.Fatalf("expected no extraction error for %q, got %v", text, err)
		}
		if err := v.Shape(order); err != nil {
			t.Fatalf("expected extractor output for %q to pass shape validation, got %v", text, err)
		}
	}
}

func TestShape_RejectsInconsistentRecords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mutate   func(o *models.OrderRecord)
		wantPath string
	}{
		{
			name:     "malformed order id",
			mutate:   func(o *models.OrderRecord) { o.OrderID = "12-34" },
			wantPath: "orderId",
		},
		{
			name:     "negative item price",
			mutate:   func(o *models.OrderRecord) { o.Items[0].Price = -1; o.Items[0].Total = -2; o.Recalculate() },
			wantPath: "items[0].price",
		},
		{
			name:     "positive promotion",
			mutate:   func(o *models.OrderRecord) { o.Items[1].Price = 1; o.Recalculate() },
			wantPath: "items[1].price",
		},
		{
			name:     "stale item total",
			mutate:   func(o *models.OrderRecord) { o.Items[0].Total = 100 },
			wantPath: "items[0].total",
		},
		{
			name:     "stale subtotal",
			mutate:   func(o *models.OrderRecord) { o.Totals.Subtotal += 1; o.Totals.Total += 1 },
			wantPath: "totals.subtotal",
		},
		{
			name:     "stale grand total",
			mutate:   func(o *models.OrderRecord) { o.Totals.Total = 0 },
			wantPath: "totals.total",
		},
		{
			name:     "negative shipping",
			mutate:   func(o *models.OrderRecord) { o.Totals.Shipping = -1; o.Totals.Total -= 4.5 },
			wantPath: "totals.shipping",
		},
	}

	v := New()
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			order := completeOrder()
			tc.mutate(order)

			err := v.Shape(order)
			if err == nil {
				t.Fatalf("expected error, got nil")
			}
			var errs Errors
			if !errors.As(err, &errs) {
				t.Fatalf("expected validation.Errors, got %T: %v", err, err)
			}
			found := false
			for _, fe := range errs {
				if fe.Path == tc.wantPath {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected error at %q, got %v", tc.wantPath, errs)
			}
		})
	}
}

func TestComplete(t *testing.T) {
	t.Parallel()

	v := New()
	if err := v.Complete(completeOrder()); err != nil {
		t.Fatalf("expected complete order to pass, got %v", err)
	}

	empty, err := parser.ExtractFromString("")
	if err != nil {
		t.Fatalf("expected no extraction error, got %v", err)
	}
	err = v.Complete(empty)
	if err == nil {
		t.Fatalf("expected error for empty record, got nil")
	}
	for _, want := range []string{"orderId", "purchaseDate", "customer.name", "customer.address", "items"} {
		if !strings.Contains(err.Error(), want+":") {
			t.Fatalf("expected error for %s, got %v", want, err)
		}
	}
}

func TestComplete_RequiresItemIdentifiers(t *testing.T) {
	t.Parallel()

	order := completeOrder()
	order.Items[0].SKU = ""
	order.Items[0].Quantity = 0
	order.Recalculate()

	err := New().Complete(order)
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "items.0.sku") || !strings.Contains(err.Error(), "items.0.quantity") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateCompanyAndTemplate(t *testing.T) {
	t.Parallel()

	v := New()

	company := &models.CompanyDetails{
		Name:    "My FBA Business",
		Address: []string{"456 Commerce Road"},
		Email:   "contact@myfba.com",
		Website: "www.myfba.com",
	}
	if err := v.ValidateCompany(company); err != nil {
		t.Fatalf("expected valid company, got %v", err)
	}

	company.Email = "not-an-email"
	if err := v.ValidateCompany(company); err == nil {
		t.Fatalf("expected invalid email error, got nil")
	}

	if err := v.ValidateCompany(&models.CompanyDetails{Name: "No Address"}); err == nil {
		t.Fatalf("expected address error, got nil")
	}

	template := &models.ReceiptTemplate{ID: "t1", Name: "Blue", PrimaryColor: "#0000FF", SecondaryColor: "#333"}
	if err := v.ValidateTemplate(template); err != nil {
		t.Fatalf("expected valid template, got %v", err)
	}
	template.PrimaryColor = "blue"
	if err := v.ValidateTemplate(template); err == nil {
		t.Fatalf("expected colour error, got nil")
	}
}

func TestIsValidOrderID(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"206-8888888-1111111":  true,
		"206-8888888-111111":   false,
		" 206-8888888-1111111": false,
		"":                     false,
	}
	for id, want := range tests {
		if got := IsValidOrderID(id); got != want {
			t.Fatalf("IsValidOrderID(%q) = %v, want %v", id, got, want)
		}
	}
}
