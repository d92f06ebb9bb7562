package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/gitshopapp/orderreceipt/internal/models"
)

type shippingRequest struct {
	Amount *float64 `json:"amount"`
}

type vatRequest struct {
	Percent *float64 `json:"percent"`
}

func (h *Handlers) UpdateItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	index, err := strconv.Atoi(vars["index"])
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid_index", "Item index must be an integer")
		return
	}

	var patch models.ItemPatch
	if !h.decodeJSON(w, r, &patch) {
		return
	}
	order, err := h.receipts.UpdateItem(r.Context(), vars["orderId"], index, patch)
	h.writeEdited(w, r, order, err)
}

func (h *Handlers) SetShipping(w http.ResponseWriter, r *http.Request) {
	var req shippingRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if req.Amount == nil {
		h.writeError(w, r, http.StatusBadRequest, "missing_amount", "amount is required")
		return
	}
	order, err := h.receipts.SetShipping(r.Context(), mux.Vars(r)["orderId"], *req.Amount)
	h.writeEdited(w, r, order, err)
}

func (h *Handlers) SetVATRate(w http.ResponseWriter, r *http.Request) {
	var req vatRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if req.Percent == nil {
		h.writeError(w, r, http.StatusBadRequest, "missing_percent", "percent is required")
		return
	}
	order, err := h.receipts.SetVATRate(r.Context(), mux.Vars(r)["orderId"], *req.Percent)
	h.writeEdited(w, r, order, err)
}

func (h *Handlers) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var patch models.CustomerPatch
	if !h.decodeJSON(w, r, &patch) {
		return
	}
	order, err := h.receipts.UpdateCustomer(r.Context(), mux.Vars(r)["orderId"], patch)
	h.writeEdited(w, r, order, err)
}

func (h *Handlers) UpdateShippingDetails(w http.ResponseWriter, r *http.Request) {
	var patch models.ShippingDetailsPatch
	if !h.decodeJSON(w, r, &patch) {
		return
	}
	order, err := h.receipts.UpdateShippingDetails(r.Context(), mux.Vars(r)["orderId"], patch)
	h.writeEdited(w, r, order, err)
}

func (h *Handlers) writeEdited(w http.ResponseWriter, r *http.Request, order *models.OrderRecord, err error) {
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, order)
}
