package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/gitshopapp/orderreceipt/internal/models"
	"github.com/gitshopapp/orderreceipt/internal/receipt"
	"github.com/gitshopapp/orderreceipt/internal/services"
)

type parseRequest struct {
	Text string `json:"text"`
}

// ParseOrder accepts either raw order text or a JSON body {"text": "..."}.
func (h *Handlers) ParseOrder(w http.ResponseWriter, r *http.Request) {
	// JSON framing adds a little on top of the text limit.
	limit := h.receipts.MaxTextBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit+limit/8+1024)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.writeServiceError(w, r, services.ErrInputTooLarge)
			return
		}
		h.writeError(w, r, http.StatusBadRequest, "invalid_body", "Failed to read request body")
		return
	}

	text := string(body)
	if isJSONRequest(r) {
		var req parseRequest
		if err := json.Unmarshal(body, &req); err != nil {
			h.writeError(w, r, http.StatusBadRequest, "invalid_json", "Request body must be valid JSON")
			return
		}
		text = req.Text
	}

	result, err := h.receipts.Parse(r.Context(), text)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, result)
}

func (h *Handlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.receipts.History(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, map[string]any{"orders": orders})
}

func (h *Handlers) SaveOrder(w http.ResponseWriter, r *http.Request) {
	var order models.OrderRecord
	if !h.decodeJSON(w, r, &order) {
		return
	}
	if order.Customer.Address == nil {
		order.Customer.Address = []string{}
	}
	if order.Items == nil {
		order.Items = []models.LineItem{}
	}

	if err := h.receipts.SaveOrder(r.Context(), &order); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, &order)
}

func (h *Handlers) ClearOrders(w http.ResponseWriter, r *http.Request) {
	if err := h.receipts.ClearHistory(r.Context()); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.receipts.LoadOrder(r.Context(), mux.Vars(r)["orderId"])
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, order)
}

func (h *Handlers) ExportOrders(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.receipts.ExportCSV(r.Context(), &buf); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="order_history.csv"`)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.loggerFromContext(r.Context()).Error("failed to write csv export", "error", err)
	}
}

// OrderReceipt renders the HTML receipt. Query parameters template,
// receiptNumber, receiptDate, paymentMethod and notes override the defaults.
func (h *Handlers) OrderReceipt(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	input := services.RenderReceiptInput{
		OrderID:    mux.Vars(r)["orderId"],
		TemplateID: strings.TrimSpace(query.Get("template")),
		Options: receipt.Options{
			ReceiptNumber: strings.TrimSpace(query.Get("receiptNumber")),
			ReceiptDate:   strings.TrimSpace(query.Get("receiptDate")),
			PaymentMethod: strings.TrimSpace(query.Get("paymentMethod")),
			Notes:         strings.TrimSpace(query.Get("notes")),
		},
	}

	var buf bytes.Buffer
	if err := h.receipts.RenderReceipt(r.Context(), &buf, input); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.loggerFromContext(r.Context()).Error("failed to write receipt", "error", err)
	}
}

func isJSONRequest(r *http.Request) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "application/json"
}
