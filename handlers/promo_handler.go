package handlers

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"

	"paymenthook/models"
)

type promoCreator interface {
	CreatePromo(ctx context.Context, payload models.PromoPayload) (*models.PromoOutcome, error)
}

type PromoHandler struct {
	promos promoCreator
}

func NewPromoHandler(promos promoCreator) *PromoHandler {
	return &PromoHandler{promos: promos}
}

type promoResponse struct {
	Success      bool                 `json:"success"`
	Message      string               `json:"message"`
	UserID       string               `json:"userId"`
	PromoCode    string               `json:"promoCode"`
	IsExisting   bool                 `json:"isExisting"`
	PromoDetails *models.PromoDetails `json:"promoDetails"`
}

// CreatePromo handles POST /createPromo. Only JSON bodies are accepted.
func (h *PromoHandler) CreatePromo(w http.ResponseWriter, r *http.Request) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		respondError(w, r, models.Errorf(models.ErrMalformedRequest, "content type must be application/json"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var payload models.PromoPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, r, models.Wrap(models.ErrMalformedRequest, err, "invalid JSON body"))
		return
	}

	out, err := h.promos.CreatePromo(r.Context(), payload)
	if err != nil {
		respondError(w, r, err)
		return
	}

	message := "Promo code created successfully"
	if out.IsExisting {
		message = "Customer already has a promo code"
	}
	respondJSON(w, http.StatusOK, promoResponse{
		Success:      true,
		Message:      message,
		UserID:       out.UserID,
		PromoCode:    out.PromoCode,
		IsExisting:   out.IsExisting,
		PromoDetails: out.Details,
	})
}
