package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"discount-engine/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already out; nothing useful left to do.
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string, logger zerolog.Logger) {
	logger.Error().Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: message})
}

// writeDomainError maps a business error to a client response. Domain errors
// are expected outcomes and logged at warn, everything else is a 500.
func writeDomainError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		logger.Warn().Str("code", domainErr.Code).Msg(domainErr.Message)
		status := http.StatusBadRequest
		switch domainErr.Code {
		case model.ErrCodeOrderNotFound:
			status = http.StatusNotFound
		case model.ErrCodeRedemptionConflict:
			status = http.StatusConflict
		}
		writeJSON(w, status, model.ErrorResponse{Error: domainErr.Code, Message: domainErr.Message})
		return
	}

	writeError(w, http.StatusInternalServerError, "internal server error", logger)
}
