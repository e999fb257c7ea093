package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"shopledger/internal/core"
	"shopledger/internal/middleware/trace"
	"shopledger/internal/services"
	"shopledger/internal/storage"
)

// envelope is the uniform response shape of every API endpoint.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= 500 {
		slog.ErrorContext(r.Context(), "Request failed",
			"error", err,
			"path", r.URL.Path,
			"request_id", trace.GetRequestID(r.Context()))
	}
	writeJSON(w, status, envelope{Success: false, Error: err.Error()})
}

var badRequestErrors = []error{
	core.ErrInvalidDate,
	core.ErrInvalidAmount,
	core.ErrInvalidType,
	core.ErrInvalidPaymentMethod,
	core.ErrEmptyDescription,
	core.ErrEmptyCategory,
	core.ErrEmptyName,
	core.ErrDescriptionTooLong,
	core.ErrInvalidPeriod,
	core.ErrMissingCustomDay,
	services.ErrDefaultCategory,
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrTransactionNotFound),
		errors.Is(err, storage.ErrCategoryNotFound):
		return http.StatusNotFound
	}
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}
