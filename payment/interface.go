package payment

import (
	"context"

	"github.com/stripe/stripe-go/v82"
)

// Processor is the slice of the Stripe API this service reads and writes
type Processor interface {
	GetCharge(ctx context.Context, chargeID string) (*stripe.Charge, error)
	GetPaymentIntent(ctx context.Context, paymentIntentID string) (*stripe.PaymentIntent, error)
	// FindCheckoutSession returns nil without error when the payment intent has no session
	FindCheckoutSession(ctx context.Context, paymentIntentID string) (*stripe.CheckoutSession, error)
	ListSessionLineItems(ctx context.Context, sessionID string) ([]*stripe.LineItem, error)
	GetInvoice(ctx context.Context, invoiceID string) (*stripe.Invoice, error)
	ListSubscriptions(ctx context.Context, customerID string, limit int64) ([]*stripe.Subscription, error)

	CreateCoupon(ctx context.Context, params *stripe.CouponParams) (*stripe.Coupon, error)
	DeleteCoupon(ctx context.Context, couponID string) error
	CreatePromotionCode(ctx context.Context, params *stripe.PromotionCodeParams) (*stripe.PromotionCode, error)
}
