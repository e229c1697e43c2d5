package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paymenthook/models"
	"paymenthook/services"
)

func TestReceivePaymentSuccess(t *testing.T) {
	flows := &fakeFlows{result: &models.FlowResult{
		FlowType: "Flow 3: Subscription update",
		Data:     models.SubscriptionFlowData{Subscription: models.SubscriptionRef{ID: "sub_1"}, ChargeID: "ch_1"},
	}}
	h := newTestRouter(flows, &fakePromos{}, "")

	rec := doRequest(t, h, http.MethodPost, "/receivePayment", "application/json",
		`{"event_type":"payment_intent.succeeded","description":"Subscription update","latest_charge":"ch_1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Payment webhook processed successfully", body["message"])
	assert.Equal(t, "Flow 3: Subscription update", body["flow"])
	assert.Equal(t, map[string]any{
		"subscription": map[string]any{"id": "sub_1"},
		"charge_id":    "ch_1",
	}, body["data"])

	require.Len(t, flows.got, 1)
	assert.Equal(t, models.WebhookPayload{
		EventType:    "payment_intent.succeeded",
		Description:  "Subscription update",
		LatestCharge: "ch_1",
	}, flows.got[0])
}

func TestReceivePaymentPaymentFlowBody(t *testing.T) {
	flows := &fakeFlows{result: &models.FlowResult{
		FlowType: services.LabelPayment,
		Data: models.PaymentFlowData{
			PaymentIntentID: "pi_1",
			Customer:        models.CustomerData{ID: "cus_1", FirstName: "Émile", LastName: "Durand", Email: "a@b.com"},
			Invoice:         models.InvoiceData{ID: "in_1", ProductDescription: "1 × Abonnement"},
			ProductID:       "prod_a",
			PromotionCode:   "promo_1",
			Subscription:    &models.SubscriptionRef{ID: "sub_1"},
			ChargeID:        "ch_1",
		},
	}}
	h := newTestRouter(flows, &fakePromos{}, "")

	rec := doRequest(t, h, http.MethodPost, "/receivePayment", "application/json",
		`{"event_type":"payment_intent.succeeded","latest_charge":"ch_1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"success": true,
		"message": "Payment webhook processed successfully",
		"flow": "Flow 1: Description vide",
		"data": {
			"payment_intent_id": "pi_1",
			"customer": {"id": "cus_1", "prenom": "Émile", "nom": "Durand", "email": "a@b.com"},
			"invoice": {"id": "in_1", "product_description": "1 × Abonnement"},
			"product_id": "prod_a",
			"promotion_code": "promo_1",
			"subscription": {"id": "sub_1"},
			"charge_id": "ch_1"
		}
	}`, rec.Body.String())
}

func TestReceivePaymentErrors(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		err         error
		wantStatus  int
		wantError   string
		wantDetails string
	}{
		{
			name:       "malformed json",
			body:       `{"event_type":`,
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid JSON body",
		},
		{
			name:       "empty body",
			body:       ``,
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid JSON body",
		},
		{
			name:       "validation",
			body:       `{}`,
			err:        models.Errorf(models.ErrValidation, "event_type is required"),
			wantStatus: http.StatusBadRequest,
			wantError:  "event_type is required",
		},
		{
			name:        "upstream",
			body:        `{"event_type":"payment_intent.succeeded","latest_charge":"ch_1"}`,
			err:         models.Wrap(models.ErrUpstream, errors.New("no such charge"), "unable to retrieve payment data"),
			wantStatus:  http.StatusInternalServerError,
			wantError:   "unable to retrieve payment data",
			wantDetails: "no such charge",
		},
		{
			name:        "unclassified error",
			body:        `{"event_type":"payment_intent.succeeded","latest_charge":"ch_1"}`,
			err:         errors.New("unexpected"),
			wantStatus:  http.StatusInternalServerError,
			wantError:   "internal server error",
			wantDetails: "unexpected",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestRouter(&fakeFlows{err: tc.err}, &fakePromos{}, "")

			rec := doRequest(t, h, http.MethodPost, "/receivePayment", "application/json", tc.body)

			assert.Equal(t, tc.wantStatus, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tc.wantError, body["error"])
			if tc.wantDetails != "" {
				assert.Equal(t, tc.wantDetails, body["details"])
			}
		})
	}
}

func TestReceivePaymentMalformedSkipsProcessing(t *testing.T) {
	flows := &fakeFlows{}
	h := newTestRouter(flows, &fakePromos{}, "")

	rec := doRequest(t, h, http.MethodPost, "/receivePayment", "application/json", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, flows.got)
}
