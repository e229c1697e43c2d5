package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"paymenthook/models"
)

type fakeFlows struct {
	result *models.FlowResult
	err    error
	got    []models.WebhookPayload
	panics bool
}

func (f *fakeFlows) Process(_ context.Context, payload models.WebhookPayload) (*models.FlowResult, error) {
	if f.panics {
		panic("boom")
	}
	f.got = append(f.got, payload)
	return f.result, f.err
}

type fakePromos struct {
	out *models.PromoOutcome
	err error
	got []models.PromoPayload
}

func (f *fakePromos) CreatePromo(_ context.Context, payload models.PromoPayload) (*models.PromoOutcome, error) {
	f.got = append(f.got, payload)
	return f.out, f.err
}

func newTestRouter(flows *fakeFlows, promos *fakePromos, webhookSecret string) http.Handler {
	var stripeWebhook *StripeWebhookHandler
	if webhookSecret != "" {
		stripeWebhook = NewStripeWebhookHandler(webhookSecret, flows)
	}
	return NewRouter(NewPaymentHandler(flows), NewPromoHandler(promos), stripeWebhook)
}

func doRequest(t *testing.T, h http.Handler, method, path, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}
