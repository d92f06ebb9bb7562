package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gitshopapp/orderreceipt/internal/company"
	"github.com/gitshopapp/orderreceipt/internal/config"
	"github.com/gitshopapp/orderreceipt/internal/handlers"
	"github.com/gitshopapp/orderreceipt/internal/history"
	"github.com/gitshopapp/orderreceipt/internal/models"
	"github.com/gitshopapp/orderreceipt/internal/parser"
	"github.com/gitshopapp/orderreceipt/internal/services"
	"github.com/gitshopapp/orderreceipt/internal/storage"
	"github.com/gitshopapp/orderreceipt/internal/templates"
	"github.com/gitshopapp/orderreceipt/internal/validation"
)

const orderText = `Order ID: # 206-8888888-1111111
Purchase date:	Fri, 9 May 2025, 12:00 BST
Ship to

Steven Steve
123 Amazon Lane
AM4 4ZN
United Kingdom

Amazon Basics Pencil (HB)
ASIN: B09MXXXXXX
SKU: AM-AMZN-XXXX
1 £2.99`

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	provider, err := storage.NewMemoryProvider()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := services.NewReceiptService(
		parser.NewExtractor(),
		validation.New(),
		history.NewStore(provider, 10),
		templates.NewStore(provider),
		company.NewStore(provider),
		services.ReceiptLimits{MaxTextBytes: 4096},
		logger,
	)
	h, err := handlers.New(handlers.Dependencies{
		ReceiptService: svc,
		Storage:        provider,
		Logger:         logger,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	srv, err := New(&config.Config{Port: "0"}, logger, h)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return srv.Handler()
}

func do(t *testing.T, handler http.Handler, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestNew_RequiresDependencies(t *testing.T) {
	t.Parallel()

	if _, err := New(nil, slog.Default(), &handlers.Handlers{}); err == nil {
		t.Fatalf("expected config error, got nil")
	}
	if _, err := New(&config.Config{}, nil, &handlers.Handlers{}); err == nil {
		t.Fatalf("expected logger error, got nil")
	}
	if _, err := New(&config.Config{}, slog.Default(), nil); err == nil {
		t.Fatalf("expected handlers error, got nil")
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	rec := do(t, newTestHandler(t), http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected request id header")
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		contentType string
		body        string
		wantStatus  int
		wantError   string
	}{
		{name: "raw text", contentType: "text/plain", body: orderText, wantStatus: http.StatusOK},
		{name: "json body", contentType: "application/json", body: mustJSON(t, map[string]string{"text": orderText}), wantStatus: http.StatusOK},
		{name: "empty", contentType: "text/plain", body: "   ", wantStatus: http.StatusBadRequest, wantError: "empty_input"},
		{name: "no order id", contentType: "text/plain", body: "hello", wantStatus: http.StatusUnprocessableEntity, wantError: "no_order_id"},
		{name: "too large", contentType: "text/plain", body: strings.Repeat("x", 8192), wantStatus: http.StatusRequestEntityTooLarge, wantError: "input_too_large"},
		{name: "bad json", contentType: "application/json", body: "{", wantStatus: http.StatusBadRequest, wantError: "invalid_json"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec := do(t, newTestHandler(t), http.MethodPost, "/api/parse", tc.contentType, tc.body)
			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tc.wantStatus, rec.Code, rec.Body.String())
			}
			if tc.wantError == "" {
				var result services.ParseResult
				if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
					t.Fatalf("expected JSON result, got %v", err)
				}
				if result.Order.OrderID != "206-8888888-1111111" {
					t.Fatalf("expected order id, got %q", result.Order.OrderID)
				}
				return
			}
			var body map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("expected JSON error, got %v", err)
			}
			if body["error"] != tc.wantError {
				t.Fatalf("expected error %q, got %v", tc.wantError, body["error"])
			}
		})
	}
}

func TestOrdersFlow(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t)

	rec := do(t, handler, http.MethodGet, "/api/orders/export.csv", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected empty export to return %d, got %d", http.StatusNotFound, rec.Code)
	}

	rec = do(t, handler, http.MethodPost, "/api/parse", "text/plain", orderText)
	var result services.ParseResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("expected JSON result, got %v", err)
	}

	rec = do(t, handler, http.MethodPost, "/api/orders", "application/json", mustJSON(t, result.Order))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec = do(t, handler, http.MethodGet, "/api/orders/206-8888888-1111111", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	rec = do(t, handler, http.MethodGet, "/api/orders/export.csv", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if !strings.HasPrefix(rec.Body.String(), "Order ID,Date,Customer,Items,Total\n") {
		t.Fatalf("unexpected csv: %s", rec.Body.String())
	}

	rec = do(t, handler, http.MethodGet, "/api/orders/206-8888888-1111111/receipt?paymentMethod=PayPal", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "PayPal") {
		t.Fatalf("expected payment method in receipt")
	}

	rec = do(t, handler, http.MethodDelete, "/api/orders", "", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}

	rec = do(t, handler, http.MethodGet, "/api/orders/206-8888888-1111111", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestSaveOrder_ValidationFields(t *testing.T) {
	t.Parallel()

	body := `{"orderId":"bad","items":[],"totals":{"subtotal":0,"shipping":0,"total":0}}`
	rec := do(t, newTestHandler(t), http.MethodPost, "/api/orders", "application/json", body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status %d, got %d", http.StatusUnprocessableEntity, rec.Code)
	}

	var resp struct {
		Error  string `json:"error"`
		Fields []struct {
			Path string `json:"path"`
		} `json:"fields"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("expected JSON error, got %v", err)
	}
	if resp.Error != "validation_failed" || len(resp.Fields) == 0 || resp.Fields[0].Path != "orderId" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestOrderEdits(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t)
	rec := do(t, handler, http.MethodPost, "/api/parse", "text/plain", orderText)
	var result services.ParseResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("expected JSON result, got %v", err)
	}
	rec = do(t, handler, http.MethodPost, "/api/orders", "application/json", mustJSON(t, result.Order))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	const base = "/api/orders/206-8888888-1111111"
	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
		wantError  string
	}{
		{name: "item quantity", method: http.MethodPatch, target: base + "/items/0", body: `{"quantity":2}`, wantStatus: http.StatusOK},
		{name: "shipping", method: http.MethodPut, target: base + "/shipping", body: `{"amount":3.5}`, wantStatus: http.StatusOK},
		{name: "vat", method: http.MethodPut, target: base + "/vat", body: `{"percent":20}`, wantStatus: http.StatusOK},
		{name: "customer", method: http.MethodPatch, target: base + "/customer", body: `{"name":"Jane Doe","postcode":"AB1 2CD"}`, wantStatus: http.StatusOK},
		{name: "shipping details", method: http.MethodPatch, target: base + "/shipping-details", body: `{"service":"Next Day"}`, wantStatus: http.StatusOK},
		{name: "item out of range", method: http.MethodPatch, target: base + "/items/9", body: `{"quantity":1}`, wantStatus: http.StatusBadRequest, wantError: "invalid_edit"},
		{name: "negative shipping", method: http.MethodPut, target: base + "/shipping", body: `{"amount":-1}`, wantStatus: http.StatusBadRequest, wantError: "invalid_edit"},
		{name: "missing amount", method: http.MethodPut, target: base + "/shipping", body: `{}`, wantStatus: http.StatusBadRequest, wantError: "missing_amount"},
		{name: "vat above 100", method: http.MethodPut, target: base + "/vat", body: `{"percent":150}`, wantStatus: http.StatusBadRequest, wantError: "invalid_edit"},
		{name: "negative price", method: http.MethodPatch, target: base + "/items/0", body: `{"price":-1}`, wantStatus: http.StatusUnprocessableEntity, wantError: "validation_failed"},
		{name: "unknown field", method: http.MethodPatch, target: base + "/customer", body: `{"nickname":"J"}`, wantStatus: http.StatusBadRequest, wantError: "invalid_json"},
		{name: "unknown order", method: http.MethodPut, target: "/api/orders/206-0000000-0000000/vat", body: `{"percent":5}`, wantStatus: http.StatusNotFound, wantError: "order_not_found"},
	}

	for _, tc := range tests {
		rec := do(t, handler, tc.method, tc.target, "application/json", tc.body)
		if rec.Code != tc.wantStatus {
			t.Fatalf("%s: expected status %d, got %d: %s", tc.name, tc.wantStatus, rec.Code, rec.Body.String())
		}
		if tc.wantError == "" {
			continue
		}
		var body map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s: expected JSON error, got %v", tc.name, err)
		}
		if body["error"] != tc.wantError {
			t.Fatalf("%s: expected error %q, got %v", tc.name, tc.wantError, body["error"])
		}
	}

	rec = do(t, handler, http.MethodGet, base, "", "")
	var stored models.OrderRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &stored); err != nil {
		t.Fatalf("expected JSON order, got %v", err)
	}
	if stored.Items[0].Quantity != 2 || stored.Items[0].Price != 2.99 {
		t.Fatalf("expected edited item, got %+v", stored.Items[0])
	}
	// 5.98 subtotal + 3.50 shipping + 1.20 VAT
	if stored.Totals.Shipping != 3.5 || stored.Totals.VAT != 1.2 || stored.Totals.Total < 10.67 || stored.Totals.Total > 10.69 {
		t.Fatalf("expected recalculated totals, got %+v", stored.Totals)
	}
	if stored.Customer.Name != "Jane Doe" || stored.Customer.Postcode != "AB1 2CD" || stored.ShippingDetails.Service != "Next Day" {
		t.Fatalf("expected customer and shipping edits, got %+v", stored)
	}

	rec = do(t, handler, http.MethodGet, "/api/orders", "", "")
	var list struct {
		Orders []models.OrderRecord `json:"orders"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("expected JSON list, got %v", err)
	}
	if len(list.Orders) != 1 {
		t.Fatalf("expected edits to update the entry in place, got %d entries", len(list.Orders))
	}
}

func TestCompanyAndTemplates(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t)

	rec := do(t, handler, http.MethodPut, "/api/company", "application/json", `{"name":"Acme","address":["1 Road"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	rec = do(t, handler, http.MethodGet, "/api/company", "", "")
	if !strings.Contains(rec.Body.String(), `"name":"Acme"`) {
		t.Fatalf("expected saved company, got %s", rec.Body.String())
	}

	rec = do(t, handler, http.MethodPut, "/api/company", "application/json", `{"name":"Acme","address":[]}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status %d, got %d", http.StatusUnprocessableEntity, rec.Code)
	}

	rec = do(t, handler, http.MethodPost, "/api/templates", "application/json",
		`{"id":"blue","name":"Blue","primaryColor":"#0000FF","secondaryColor":"#111111","showVat":false,"termsAndConditions":[]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	rec = do(t, handler, http.MethodDelete, "/api/templates/blue", "", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
	rec = do(t, handler, http.MethodDelete, "/api/templates/blue", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestNotFound(t *testing.T) {
	t.Parallel()

	rec := do(t, newTestHandler(t), http.MethodGet, "/nope", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return string(raw)
}
