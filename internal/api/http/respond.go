package http

import (
	"encoding/json"
	"net/http"

	"car-rental-adjustments/internal/domain"
	"car-rental-adjustments/internal/logger"
)

type errorResponse struct {
	Kind    domain.ErrorKind `json:"kind"`
	Message string           `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Error("Failed to encode response", "error", err)
		}
	}
}

// writeError maps the engine's error taxonomy onto HTTP status codes. Errors
// without a taxonomy kind are internal failures and are not echoed to the
// client.
func writeError(w http.ResponseWriter, err error) {
	kind := domain.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case domain.ErrKindValidation:
		status = http.StatusBadRequest
	case domain.ErrKindNotFound:
		status = http.StatusNotFound
	case domain.ErrKindStateConflict:
		status = http.StatusConflict
	case domain.ErrKindAuthorization:
		status = http.StatusForbidden
	case domain.ErrKindPaymentFailure:
		status = http.StatusBadGateway
	}
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "error", err)
		writeJSON(w, status, errorResponse{Message: "internal error"})
		return
	}
	writeJSON(w, status, errorResponse{Kind: kind, Message: err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, domain.NewValidationError("invalid request body: %v", err))
		return false
	}
	return true
}
