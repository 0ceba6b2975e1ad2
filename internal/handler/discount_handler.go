package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"discount-engine/internal/model"
	"discount-engine/internal/service"

	"github.com/rs/zerolog"
)

// DiscountHandler handles discount-related HTTP requests.
type DiscountHandler struct {
	service service.DiscountService
	logger  zerolog.Logger
}

// NewDiscountHandler creates a new discount handler.
func NewDiscountHandler(service service.DiscountService, logger zerolog.Logger) *DiscountHandler {
	return &DiscountHandler{
		service: service,
		logger:  logger.With().Str("handler", "discount").Logger(),
	}
}

// Evaluate handles POST /api/discounts/evaluate requests. It is speculative:
// no counter moves, and a rejected code is a 200 with valid=false so cart
// previews can display the reason.
func (h *DiscountHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	var req model.EvaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	result, err := h.service.Evaluate(r.Context(), &req)
	if err != nil {
		if isRequestError(err) {
			writeError(w, http.StatusBadRequest, err.Error(), h.logger)
			return
		}
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Import handles POST /api/discounts/import requests.
func (h *DiscountHandler) Import(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	var req model.ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	result, err := h.service.Import(r.Context(), &req)
	if err != nil {
		if isRequestError(err) {
			writeError(w, http.StatusBadRequest, err.Error(), h.logger)
			return
		}
		writeError(w, http.StatusInternalServerError, "import failed", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// isRequestError distinguishes malformed-request validation failures from
// engine and storage errors.
func isRequestError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "required") ||
		strings.Contains(msg, "must contain") ||
		strings.Contains(msg, "must be positive") ||
		strings.Contains(msg, "invalid")
}
