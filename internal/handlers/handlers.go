package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gitshopapp/orderreceipt/internal/logging"
	"github.com/gitshopapp/orderreceipt/internal/services"
	"github.com/gitshopapp/orderreceipt/internal/validation"
)

// maxJSONBodyBytes bounds request bodies other than order text.
const maxJSONBodyBytes = 1 << 20 // 1 MB

type healthChecker interface {
	Ping(ctx context.Context) error
}

// Handlers provides the HTTP handlers for the receipt API.
type Handlers struct {
	receipts       *services.ReceiptService
	storage        healthChecker
	allowedOrigins []string
	logger         *slog.Logger
}

type Dependencies struct {
	ReceiptService *services.ReceiptService
	Storage        healthChecker
	AllowedOrigins []string
	Logger         *slog.Logger
}

func New(deps Dependencies) (*Handlers, error) {
	logger := logging.OrDiscard(deps.Logger)

	if deps.ReceiptService == nil {
		return nil, fmt.Errorf("handlers dependencies: receiptService is required")
	}
	if deps.Storage == nil {
		return nil, fmt.Errorf("handlers dependencies: storage is required")
	}

	return &Handlers{
		receipts:       deps.ReceiptService,
		storage:        deps.Storage,
		allowedOrigins: deps.AllowedOrigins,
		logger:         logger.With("component", "handlers"),
	}, nil
}

func (h *Handlers) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, h.logger)
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	if err := h.storage.Ping(ctx); err != nil {
		logger.Error("storage health check failed", "error", err)
		http.Error(w, "Storage unhealthy", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
	}); err != nil {
		logger.Error("failed to encode health response", "error", err)
	}
}

type errorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  validation.Errors `json:"fields,omitempty"`
}

func (h *Handlers) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.loggerFromContext(r.Context()).Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	h.writeJSON(w, r, status, errorResponse{Error: code, Message: message})
}

// writeServiceError maps service and store errors to HTTP responses.
func (h *Handlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		h.writeJSON(w, r, http.StatusUnprocessableEntity, errorResponse{
			Error:   "validation_failed",
			Message: "Validation failed",
			Fields:  fieldErrs,
		})
		return
	}

	status, code, message := classifyError(err)
	if status >= http.StatusInternalServerError {
		h.loggerFromContext(r.Context()).Error("request failed", "error", err)
	}
	h.writeError(w, r, status, code, message)
}

func (h *Handlers) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.writeError(w, r, http.StatusRequestEntityTooLarge, "body_too_large", "Request body is too large")
			return false
		}
		h.writeError(w, r, http.StatusBadRequest, "invalid_json", "Request body must be valid JSON")
		return false
	}
	return true
}
