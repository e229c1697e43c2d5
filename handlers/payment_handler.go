package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"paymenthook/models"
)

const maxBodyBytes = int64(65536)

type flowProcessor interface {
	Process(ctx context.Context, payload models.WebhookPayload) (*models.FlowResult, error)
}

type PaymentHandler struct {
	flows flowProcessor
}

func NewPaymentHandler(flows flowProcessor) *PaymentHandler {
	return &PaymentHandler{flows: flows}
}

type paymentResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Flow    string `json:"flow"`
	Data    any    `json:"data"`
}

// ReceivePayment handles POST /receivePayment
func (h *PaymentHandler) ReceivePayment(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var payload models.WebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, r, models.Wrap(models.ErrMalformedRequest, err, "invalid JSON body"))
		return
	}

	result, err := h.flows.Process(r.Context(), payload)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, paymentResponse{
		Success: true,
		Message: "Payment webhook processed successfully",
		Flow:    result.FlowType,
		Data:    result.Data,
	})
}
