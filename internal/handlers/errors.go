package handlers

import (
	"errors"
	"net/http"

	"github.com/gitshopapp/orderreceipt/internal/history"
	"github.com/gitshopapp/orderreceipt/internal/models"
	"github.com/gitshopapp/orderreceipt/internal/services"
	"github.com/gitshopapp/orderreceipt/internal/templates"
)

func classifyError(err error) (status int, code string, message string) {
	switch {
	case errors.Is(err, services.ErrEmptyInput):
		return http.StatusBadRequest, "empty_input", "Order text is empty"
	case errors.Is(err, services.ErrInputTooLarge):
		return http.StatusRequestEntityTooLarge, "input_too_large", "Order text is too large"
	case errors.Is(err, services.ErrNoOrderID):
		return http.StatusUnprocessableEntity, "no_order_id", "Could not detect an order identifier"
	case errors.Is(err, services.ErrParseFailed):
		return http.StatusInternalServerError, "parse_failed", "Failed to parse order text"
	case errors.Is(err, models.ErrInvalidEdit):
		return http.StatusBadRequest, "invalid_edit", "Edit value is out of range"
	case errors.Is(err, history.ErrNotFound):
		return http.StatusNotFound, "order_not_found", "Order not found in history"
	case errors.Is(err, history.ErrEmpty):
		return http.StatusNotFound, "empty_history", "Order history is empty"
	case errors.Is(err, history.ErrCorrupt):
		return http.StatusInternalServerError, "corrupt_history", "Stored order history is corrupt"
	case errors.Is(err, templates.ErrNotFound):
		return http.StatusNotFound, "template_not_found", "Template not found"
	default:
		return http.StatusInternalServerError, "internal_error", "Internal server error"
	}
}
