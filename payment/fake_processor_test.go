package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v82"
)

var errStripeDown = errors.New("stripe unavailable")

// fakeProcessor serves canned Stripe objects and records every write
type fakeProcessor struct {
	charges        map[string]*stripe.Charge
	paymentIntents map[string]*stripe.PaymentIntent
	sessions       map[string]*stripe.CheckoutSession // keyed by payment intent
	lineItems      map[string][]*stripe.LineItem      // keyed by session
	invoices       map[string]*stripe.Invoice
	subscriptions  map[string][]*stripe.Subscription // keyed by customer

	chargeErr  error
	sessionErr error
	invoiceErr error
	couponErr  error
	promoErr   error
	deleteErr  error

	couponParams []*stripe.CouponParams
	coupons      map[string]*stripe.Coupon
	promoParams  []*stripe.PromotionCodeParams
	deleted      []string
	listedLimit  int64
	invoiceCalls int
}

func newFakeProcessor() *fakeProcessor {
	return &fakeProcessor{
		charges:        map[string]*stripe.Charge{},
		paymentIntents: map[string]*stripe.PaymentIntent{},
		sessions:       map[string]*stripe.CheckoutSession{},
		lineItems:      map[string][]*stripe.LineItem{},
		invoices:       map[string]*stripe.Invoice{},
		subscriptions:  map[string][]*stripe.Subscription{},
	}
}

func (f *fakeProcessor) GetCharge(_ context.Context, id string) (*stripe.Charge, error) {
	if f.chargeErr != nil {
		return nil, f.chargeErr
	}
	ch, ok := f.charges[id]
	if !ok {
		return nil, fmt.Errorf("retrieve charge %s: %w", id, &stripe.Error{Msg: "No such charge: '" + id + "'"})
	}
	return ch, nil
}

func (f *fakeProcessor) GetPaymentIntent(_ context.Context, id string) (*stripe.PaymentIntent, error) {
	pi, ok := f.paymentIntents[id]
	if !ok {
		return nil, fmt.Errorf("no such payment intent %s", id)
	}
	return pi, nil
}

func (f *fakeProcessor) FindCheckoutSession(_ context.Context, paymentIntentID string) (*stripe.CheckoutSession, error) {
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	return f.sessions[paymentIntentID], nil
}

func (f *fakeProcessor) ListSessionLineItems(_ context.Context, sessionID string) ([]*stripe.LineItem, error) {
	return f.lineItems[sessionID], nil
}

func (f *fakeProcessor) GetInvoice(_ context.Context, id string) (*stripe.Invoice, error) {
	f.invoiceCalls++
	if f.invoiceErr != nil {
		return nil, f.invoiceErr
	}
	inv, ok := f.invoices[id]
	if !ok {
		return nil, fmt.Errorf("no such invoice %s", id)
	}
	return inv, nil
}

func (f *fakeProcessor) ListSubscriptions(_ context.Context, customerID string, limit int64) ([]*stripe.Subscription, error) {
	f.listedLimit = limit
	return f.subscriptions[customerID], nil
}

func (f *fakeProcessor) CreateCoupon(_ context.Context, params *stripe.CouponParams) (*stripe.Coupon, error) {
	f.couponParams = append(f.couponParams, params)
	if f.couponErr != nil {
		return nil, f.couponErr
	}
	c := &stripe.Coupon{ID: fmt.Sprintf("coupon_%d", len(f.couponParams))}
	if params.PercentOff != nil {
		c.PercentOff = *params.PercentOff
	}
	if params.AmountOff != nil {
		c.AmountOff = *params.AmountOff
		c.Currency = stripe.Currency(*params.Currency)
	}
	if f.coupons == nil {
		f.coupons = map[string]*stripe.Coupon{}
	}
	f.coupons[c.ID] = c
	return c, nil
}

func (f *fakeProcessor) DeleteCoupon(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeProcessor) CreatePromotionCode(_ context.Context, params *stripe.PromotionCodeParams) (*stripe.PromotionCode, error) {
	f.promoParams = append(f.promoParams, params)
	if f.promoErr != nil {
		return nil, f.promoErr
	}
	coupon, ok := f.coupons[*params.Coupon]
	if !ok {
		coupon = &stripe.Coupon{ID: *params.Coupon}
	}
	pc := &stripe.PromotionCode{
		ID:     fmt.Sprintf("promo_%d", len(f.promoParams)),
		Coupon: coupon,
	}
	if params.Code != nil {
		pc.Code = *params.Code
	} else {
		pc.Code = "AUTOGEN"
	}
	if params.ExpiresAt != nil {
		pc.ExpiresAt = *params.ExpiresAt
	}
	if params.MaxRedemptions != nil {
		pc.MaxRedemptions = *params.MaxRedemptions
	}
	return pc, nil
}
