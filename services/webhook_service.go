package services

import (
	"context"
	"fmt"
	"strings"

	"paymenthook/logging"
	"paymenthook/models"
	"paymenthook/utils"
)

// Flow labels returned to the caller
const (
	LabelPayment              = "Flow 1: Description vide"
	LabelSubscriptionCreation = "Flow 2: Subscription creation"
	LabelSubscriptionUpdate   = "Flow 3: Subscription update"
	LabelPaymentFailed        = "Payment failed"
	labelUnknownPrefix        = "Flow inconnu: "
)

// PaymentExtractor resolves a charge into checkout data
type PaymentExtractor interface {
	Extract(ctx context.Context, chargeID, paymentIntentID string) (*models.PaymentData, error)
}

// SubscriptionResolver finds the subscription a payment belongs to
type SubscriptionResolver interface {
	ResolveFromCharge(ctx context.Context, chargeID string) (string, error)
	ResolveFromInvoice(ctx context.Context, invoiceID string) (string, error)
}

// WebhookService routes payment notifications to one of the processing flows
type WebhookService struct {
	extractor PaymentExtractor
	resolver  SubscriptionResolver
	notifier  Notifier
}

func NewWebhookService(extractor PaymentExtractor, resolver SubscriptionResolver, notifier Notifier) *WebhookService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &WebhookService{
		extractor: extractor,
		resolver:  resolver,
		notifier:  notifier,
	}
}

// Process validates the payload, classifies it and runs the matching flow.
// Returned errors are *models.Error.
func (s *WebhookService) Process(ctx context.Context, payload models.WebhookPayload) (*models.FlowResult, error) {
	log := logging.For(ctx, "Webhook")

	switch payload.EventType {
	case "":
		return nil, models.Errorf(models.ErrValidation, "event_type is required")
	case models.EventPaymentFailed:
		return s.paymentFailed(ctx, payload), nil
	case models.EventPaymentSucceeded:
	default:
		return nil, models.Errorf(models.ErrValidation, "unsupported event type: %s", payload.EventType)
	}

	kind, err := Classify(payload)
	if err != nil {
		return nil, err
	}
	log.Info("payment received", "flow", kind, "latest_charge", payload.LatestCharge)

	switch kind {
	case models.FlowPayment:
		return s.paymentFlow(ctx, LabelPayment, payload)
	case models.FlowSubscriptionCreation:
		return s.paymentFlow(ctx, LabelSubscriptionCreation, payload)
	case models.FlowSubscriptionUpdate:
		return s.subscriptionUpdateFlow(ctx, payload)
	default:
		label := labelUnknownPrefix + payload.Description
		log.Warn("unmatched flow description", "description", payload.Description, "latest_charge", payload.LatestCharge)
		s.notifier.Notify(ctx, fmt.Sprintf("%s (charge %s)", label, orDash(payload.LatestCharge)))
		return &models.FlowResult{
			FlowType: label,
			Data:     models.PassThroughData{LatestCharge: payload.LatestCharge},
		}, nil
	}
}

// Classify picks the flow from the explicit flow field, or from the normalized description
func Classify(payload models.WebhookPayload) (models.FlowKind, error) {
	switch payload.Flow {
	case "":
	case models.FlowPayment, models.FlowSubscriptionCreation, models.FlowSubscriptionUpdate:
		return payload.Flow, nil
	default:
		return "", models.Errorf(models.ErrValidation, "unsupported flow: %s", payload.Flow)
	}

	switch strings.ToLower(utils.CollapseSpaces(payload.Description)) {
	case "":
		return models.FlowPayment, nil
	case "subscription creation":
		return models.FlowSubscriptionCreation, nil
	case "subscription update":
		return models.FlowSubscriptionUpdate, nil
	}
	return models.FlowUnknown, nil
}

func (s *WebhookService) paymentFlow(ctx context.Context, label string, payload models.WebhookPayload) (*models.FlowResult, error) {
	log := logging.For(ctx, "Webhook")

	if payload.LatestCharge == "" {
		return nil, models.Errorf(models.ErrValidation, "latest_charge is required")
	}

	data, err := s.extractor.Extract(ctx, payload.LatestCharge, payload.PaymentIntent)
	if err != nil {
		log.Error("payment data extraction failed", "latest_charge", payload.LatestCharge, "error", err)
		return nil, models.Wrap(models.ErrUpstream, err, "unable to retrieve payment data")
	}

	var sub *models.SubscriptionRef
	if data.InvoiceID != "" {
		subID, err := s.resolver.ResolveFromInvoice(ctx, data.InvoiceID)
		if err != nil {
			log.Warn("subscription lookup by invoice failed", "invoice_id", data.InvoiceID, "error", err)
		} else {
			sub = &models.SubscriptionRef{ID: subID}
		}
	}

	return &models.FlowResult{
		FlowType: label,
		Data: models.PaymentFlowData{
			PaymentIntentID: data.PaymentIntentID,
			Customer: models.CustomerData{
				ID:        data.CustomerID,
				FirstName: data.FirstName,
				LastName:  data.LastName,
				Email:     data.Email,
			},
			Invoice: models.InvoiceData{
				ID:                 data.InvoiceID,
				ProductDescription: data.ProductDescription,
			},
			ProductID:     data.ProductID,
			PromotionCode: data.PromotionCode,
			Subscription:  sub,
			ChargeID:      payload.LatestCharge,
		},
	}, nil
}

func (s *WebhookService) subscriptionUpdateFlow(ctx context.Context, payload models.WebhookPayload) (*models.FlowResult, error) {
	if payload.LatestCharge == "" {
		return nil, models.Errorf(models.ErrValidation, "latest_charge is required")
	}

	subID, err := s.resolver.ResolveFromCharge(ctx, payload.LatestCharge)
	if err != nil {
		logging.For(ctx, "Webhook").Error("subscription lookup by charge failed", "latest_charge", payload.LatestCharge, "error", err)
		return nil, models.Wrap(models.ErrUpstream, err, "unable to retrieve subscription id")
	}

	return &models.FlowResult{
		FlowType: LabelSubscriptionUpdate,
		Data: models.SubscriptionFlowData{
			Subscription: models.SubscriptionRef{ID: subID},
			ChargeID:     payload.LatestCharge,
		},
	}, nil
}

func (s *WebhookService) paymentFailed(ctx context.Context, payload models.WebhookPayload) *models.FlowResult {
	logging.For(ctx, "Webhook").Warn("payment failed",
		"payment_intent", payload.PaymentIntent, "latest_charge", payload.LatestCharge)
	s.notifier.Notify(ctx, fmt.Sprintf("Payment failed: payment intent %s, charge %s",
		orDash(payload.PaymentIntent), orDash(payload.LatestCharge)))

	return &models.FlowResult{
		FlowType: LabelPaymentFailed,
		Data: models.PassThroughData{
			LatestCharge:  payload.LatestCharge,
			PaymentIntent: payload.PaymentIntent,
		},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
