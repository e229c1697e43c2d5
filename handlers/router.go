package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// NewRouter builds the HTTP router. stripeWebhook may be nil when no signing secret is configured.
func NewRouter(payments *PaymentHandler, promos *PromoHandler, stripeWebhook *StripeWebhookHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID, Logging, Recovery)

	r.Post("/receivePayment", payments.ReceivePayment)
	r.Post("/createPromo", promos.CreatePromo)
	if stripeWebhook != nil {
		r.Post("/stripe/webhook", stripeWebhook.HandleWebhook)
	}

	// health
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	return r
}
