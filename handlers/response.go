package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"paymenthook/logging"
	"paymenthook/models"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Tagged(slog.Default(), "HTTP").Error("failed to encode response", "error", err)
	}
}

// respondError renders err in the failure envelope. Errors that are not *models.Error become a bare 500.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := appErrorFor(err)

	resp := errorResponse{Error: "internal server error"}
	var modelErr *models.Error
	if errors.As(err, &modelErr) {
		resp.Error = modelErr.Message
		resp.Details = modelErr.Details()
	} else {
		resp.Details = err.Error()
	}

	log := logging.For(r.Context(), "HTTP")
	if appErr.Status >= http.StatusInternalServerError {
		log.Error("request failed", "code", appErr.Code, "error", err)
	} else {
		log.Info("request rejected", "code", appErr.Code, "error", err)
	}

	respondJSON(w, appErr.Status, resp)
}
