package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gitshopapp/orderreceipt/internal/models"
)

func (h *Handlers) GetCompany(w http.ResponseWriter, r *http.Request) {
	details, err := h.receipts.Company(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, details)
}

func (h *Handlers) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	var details models.CompanyDetails
	if !h.decodeJSON(w, r, &details) {
		return
	}
	if err := h.receipts.SaveCompany(r.Context(), &details); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, &details)
}

func (h *Handlers) ListTemplates(w http.ResponseWriter, r *http.Request) {
	list, err := h.receipts.Templates(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, map[string]any{"templates": list})
}

func (h *Handlers) SaveTemplate(w http.ResponseWriter, r *http.Request) {
	var template models.ReceiptTemplate
	if !h.decodeJSON(w, r, &template) {
		return
	}
	if err := h.receipts.SaveTemplate(r.Context(), &template); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, &template)
}

func (h *Handlers) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := h.receipts.DeleteTemplate(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
