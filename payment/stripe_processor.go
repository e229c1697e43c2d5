package payment

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

// StripeProcessor implements Processor on top of a dedicated stripe-go client,
// so no package-level stripe.Key is ever set.
type StripeProcessor struct {
	api *client.API
}

// NewStripeProcessor builds a client for apiKey. apiURL overrides the API endpoint when set.
// Network retries are disabled: a failed coupon or promotion-code create must never be replayed.
func NewStripeProcessor(apiKey, apiURL string, httpClient *http.Client) *StripeProcessor {
	cfg := &stripe.BackendConfig{
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelError},
	}
	if apiURL != "" {
		cfg.URL = stripe.String(apiURL)
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}

	backends := &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, cfg),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, cfg),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, cfg),
	}

	return &StripeProcessor{api: client.New(apiKey, backends)}
}

// CheckAPIVersion warns when the configured version differs from the one the SDK is pinned to
func CheckAPIVersion(configured string) {
	if configured != "" && configured != stripe.APIVersion {
		slog.Warn("configured Stripe API version is not applied; the SDK pins its own",
			"configured", configured, "sdk", stripe.APIVersion)
	}
}

func (s *StripeProcessor) GetCharge(ctx context.Context, chargeID string) (*stripe.Charge, error) {
	params := &stripe.ChargeParams{}
	params.Context = ctx
	ch, err := s.api.Charges.Get(chargeID, params)
	if err != nil {
		return nil, fmt.Errorf("retrieve charge %s: %w", chargeID, err)
	}
	return ch, nil
}

func (s *StripeProcessor) GetPaymentIntent(ctx context.Context, paymentIntentID string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := s.api.PaymentIntents.Get(paymentIntentID, params)
	if err != nil {
		return nil, fmt.Errorf("retrieve payment intent %s: %w", paymentIntentID, err)
	}
	return pi, nil
}

func (s *StripeProcessor) FindCheckoutSession(ctx context.Context, paymentIntentID string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionListParams{
		PaymentIntent: stripe.String(paymentIntentID),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(1)
	params.Single = true

	iter := s.api.CheckoutSessions.List(params)
	if iter.Next() {
		return iter.CheckoutSession(), nil
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list checkout sessions for %s: %w", paymentIntentID, err)
	}
	return nil, nil
}

func (s *StripeProcessor) ListSessionLineItems(ctx context.Context, sessionID string) ([]*stripe.LineItem, error) {
	params := &stripe.CheckoutSessionListLineItemsParams{
		Session: stripe.String(sessionID),
	}
	params.Context = ctx
	params.Single = true

	var items []*stripe.LineItem
	iter := s.api.CheckoutSessions.ListLineItems(params)
	for iter.Next() {
		items = append(items, iter.LineItem())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list line items for session %s: %w", sessionID, err)
	}
	return items, nil
}

func (s *StripeProcessor) GetInvoice(ctx context.Context, invoiceID string) (*stripe.Invoice, error) {
	params := &stripe.InvoiceParams{}
	params.Context = ctx
	inv, err := s.api.Invoices.Get(invoiceID, params)
	if err != nil {
		return nil, fmt.Errorf("retrieve invoice %s: %w", invoiceID, err)
	}
	return inv, nil
}

func (s *StripeProcessor) ListSubscriptions(ctx context.Context, customerID string, limit int64) ([]*stripe.Subscription, error) {
	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(limit)
	params.Single = true

	var subs []*stripe.Subscription
	iter := s.api.Subscriptions.List(params)
	for iter.Next() {
		subs = append(subs, iter.Subscription())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list subscriptions for customer %s: %w", customerID, err)
	}
	return subs, nil
}

func (s *StripeProcessor) CreateCoupon(ctx context.Context, params *stripe.CouponParams) (*stripe.Coupon, error) {
	params.Context = ctx
	c, err := s.api.Coupons.New(params)
	if err != nil {
		return nil, fmt.Errorf("create coupon: %w", err)
	}
	return c, nil
}

func (s *StripeProcessor) DeleteCoupon(ctx context.Context, couponID string) error {
	params := &stripe.CouponParams{}
	params.Context = ctx
	if _, err := s.api.Coupons.Del(couponID, params); err != nil {
		return fmt.Errorf("delete coupon %s: %w", couponID, err)
	}
	return nil
}

func (s *StripeProcessor) CreatePromotionCode(ctx context.Context, params *stripe.PromotionCodeParams) (*stripe.PromotionCode, error) {
	params.Context = ctx
	pc, err := s.api.PromotionCodes.New(params)
	if err != nil {
		return nil, fmt.Errorf("create promotion code: %w", err)
	}
	return pc, nil
}
