package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"paymenthook/logging"
	"paymenthook/models"
)

// StripeWebhookHandler accepts signed Stripe events and routes payment intents through the flow router
type StripeWebhookHandler struct {
	endpointSecret string
	flows          flowProcessor
}

func NewStripeWebhookHandler(endpointSecret string, flows flowProcessor) *StripeWebhookHandler {
	return &StripeWebhookHandler{
		endpointSecret: endpointSecret,
		flows:          flows,
	}
}

type webhookAck struct {
	Received bool   `json:"received"`
	Flow     string `json:"flow,omitempty"`
}

// HandleWebhook handles POST /stripe/webhook
func (h *StripeWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	log := logging.For(r.Context(), "Webhook")

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("error reading payload", "error", err)
		respondError(w, r, models.Wrap(models.ErrMalformedRequest, err, "unable to read body"))
		return
	}

	// The SDK pins one API version; events from endpoints on other versions still carry the fields we read
	event, err := webhook.ConstructEventWithOptions(payload, r.Header.Get("Stripe-Signature"), h.endpointSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		log.Warn("signature verification failed", "error", err)
		respondError(w, r, models.Wrap(models.ErrValidation, err, "invalid Stripe signature"))
		return
	}

	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded, stripe.EventTypePaymentIntentPaymentFailed:
		h.handlePaymentIntent(w, r, event)
	default:
		log.Info("unhandled event type", "event_id", event.ID, "type", event.Type)
		respondJSON(w, http.StatusOK, webhookAck{Received: true})
	}
}

func (h *StripeWebhookHandler) handlePaymentIntent(w http.ResponseWriter, r *http.Request, event stripe.Event) {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		logging.For(r.Context(), "Webhook").Error("error parsing payment intent", "event_id", event.ID, "error", err)
		respondError(w, r, models.Wrap(models.ErrMalformedRequest, err, "invalid payment intent in event"))
		return
	}

	result, err := h.flows.Process(r.Context(), toWebhookPayload(string(event.Type), &pi))
	if err != nil {
		respondError(w, r, err)
		return
	}

	logging.For(r.Context(), "Webhook").Info("event processed", "event_id", event.ID, "flow", result.FlowType)
	respondJSON(w, http.StatusOK, webhookAck{Received: true, Flow: result.FlowType})
}

func toWebhookPayload(eventType string, pi *stripe.PaymentIntent) models.WebhookPayload {
	payload := models.WebhookPayload{
		EventType:     eventType,
		Description:   pi.Description,
		PaymentIntent: pi.ID,
	}
	if pi.LatestCharge != nil {
		payload.LatestCharge = pi.LatestCharge.ID
	}
	return payload
}
