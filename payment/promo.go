package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v82"

	"paymenthook/logging"
	"paymenthook/models"
)

// Coupon durations
const (
	DurationOnce      = "once"
	DurationRepeating = "repeating"
	DurationForever   = "forever"
)

// ReferralPercentOff is the discount granted by referral codes scoped to subscription products
const ReferralPercentOff = 10

// CouponOptions describes the discount. Exactly one of PercentOff and AmountOff must be set.
type CouponOptions struct {
	PercentOff       float64
	AmountOff        int64 // minor units
	Currency         string
	Duration         string
	DurationInMonths int64
	Name             string
	ProductIDs       []string
}

// PromoCodeOptions describes the redeemable code bound to the coupon
type PromoCodeOptions struct {
	Code                 string
	MaxRedemptions       int64
	ExpiresAt            int64 // Unix seconds
	CustomerID           string
	FirstTimeTransaction bool
	MinimumAmount        int64
	Currency             string
}

// PromoIssuer creates a coupon and then a promotion code bound to it.
// The two writes are not transactional; when the second fails the coupon is
// optionally deleted, and the call still reports a single failure.
type PromoIssuer struct {
	processor           Processor
	deleteOrphanCoupons bool
}

func NewPromoIssuer(processor Processor, deleteOrphanCoupons bool) *PromoIssuer {
	return &PromoIssuer{
		processor:           processor,
		deleteOrphanCoupons: deleteOrphanCoupons,
	}
}

// Issue creates a coupon from couponOpts and a promotion code from promoOpts
func (p *PromoIssuer) Issue(ctx context.Context, couponOpts CouponOptions, promoOpts PromoCodeOptions) models.PromoCodeResult {
	couponParams, err := buildCouponParams(couponOpts)
	if err != nil {
		return models.PromoCodeResult{Error: err.Error()}
	}
	return p.issue(ctx, couponParams, promoOpts)
}

// IssueReferral creates a 10%-off, single-use-per-customer coupon restricted to productIDs
// and a promotion code carrying code that expires at expiresAt
func (p *PromoIssuer) IssueReferral(ctx context.Context, code string, productIDs []string, expiresAt int64) models.PromoCodeResult {
	if len(productIDs) == 0 {
		return models.PromoCodeResult{Error: "at least one product is required"}
	}
	couponParams, err := buildCouponParams(CouponOptions{
		PercentOff: ReferralPercentOff,
		Duration:   DurationOnce,
		Name:       fmt.Sprintf("Parrainage %s", code),
		ProductIDs: productIDs,
	})
	if err != nil {
		return models.PromoCodeResult{Error: err.Error()}
	}
	return p.issue(ctx, couponParams, PromoCodeOptions{Code: code, ExpiresAt: expiresAt})
}

func (p *PromoIssuer) issue(ctx context.Context, couponParams *stripe.CouponParams, promoOpts PromoCodeOptions) models.PromoCodeResult {
	log := logging.For(ctx, "Promo")

	coupon, err := p.processor.CreateCoupon(ctx, couponParams)
	if err != nil {
		log.Error("coupon creation failed", "error", err)
		return models.PromoCodeResult{Error: errorMessage(err)}
	}
	log.Info("coupon created", "coupon_id", coupon.ID, "percent_off", coupon.PercentOff, "amount_off", coupon.AmountOff)

	promo, err := p.processor.CreatePromotionCode(ctx, buildPromotionCodeParams(coupon.ID, promoOpts))
	if err != nil {
		log.Error("promotion code creation failed", "coupon_id", coupon.ID, "error", err)
		msg := errorMessage(err)
		if p.deleteOrphanCoupons {
			if delErr := p.processor.DeleteCoupon(ctx, coupon.ID); delErr != nil {
				log.Error("orphaned coupon left behind", "coupon_id", coupon.ID, "error", delErr)
				msg = fmt.Sprintf("%s (coupon %s could not be deleted: %s)", msg, coupon.ID, errorMessage(delErr))
			} else {
				log.Info("orphaned coupon deleted", "coupon_id", coupon.ID)
			}
		} else {
			msg = fmt.Sprintf("%s (coupon %s left without a promotion code)", msg, coupon.ID)
		}
		return models.PromoCodeResult{Error: msg}
	}

	log.Info("promotion code created", "promo_id", promo.ID, "code", promo.Code, "coupon_id", coupon.ID)
	return models.PromoCodeResult{Success: true, PromoCode: toPromoCode(promo, coupon)}
}

func buildCouponParams(opts CouponOptions) (*stripe.CouponParams, error) {
	if opts.PercentOff == 0 && opts.AmountOff == 0 {
		return nil, errors.New("either percent off or amount off must be provided")
	}
	if opts.PercentOff != 0 && opts.AmountOff != 0 {
		return nil, errors.New("percent off and amount off are mutually exclusive")
	}
	if opts.PercentOff < 0 || opts.PercentOff > 100 {
		return nil, fmt.Errorf("percent off must be between 0 and 100, got %v", opts.PercentOff)
	}
	if opts.AmountOff < 0 {
		return nil, fmt.Errorf("amount off must be positive, got %d", opts.AmountOff)
	}

	duration := opts.Duration
	if duration == "" {
		duration = DurationOnce
	}
	switch duration {
	case DurationOnce, DurationForever:
	case DurationRepeating:
		if opts.DurationInMonths <= 0 {
			return nil, errors.New("repeating duration requires a month count")
		}
	default:
		return nil, fmt.Errorf("unknown duration %q", duration)
	}

	params := &stripe.CouponParams{
		Duration: stripe.String(duration),
	}
	if opts.PercentOff != 0 {
		params.PercentOff = stripe.Float64(opts.PercentOff)
	}
	if opts.AmountOff != 0 {
		currency := opts.Currency
		if currency == "" {
			currency = "eur"
		}
		params.AmountOff = stripe.Int64(opts.AmountOff)
		params.Currency = stripe.String(currency)
	}
	if duration == DurationRepeating {
		params.DurationInMonths = stripe.Int64(opts.DurationInMonths)
	}
	if opts.Name != "" {
		params.Name = stripe.String(opts.Name)
	}
	if len(opts.ProductIDs) > 0 {
		params.AppliesTo = &stripe.CouponAppliesToParams{
			Products: stripe.StringSlice(opts.ProductIDs),
		}
	}
	return params, nil
}

func buildPromotionCodeParams(couponID string, opts PromoCodeOptions) *stripe.PromotionCodeParams {
	params := &stripe.PromotionCodeParams{
		Coupon: stripe.String(couponID),
	}
	if opts.Code != "" {
		params.Code = stripe.String(opts.Code)
	}
	if opts.MaxRedemptions > 0 {
		params.MaxRedemptions = stripe.Int64(opts.MaxRedemptions)
	}
	if opts.ExpiresAt > 0 {
		params.ExpiresAt = stripe.Int64(opts.ExpiresAt)
	}
	if opts.CustomerID != "" {
		params.Customer = stripe.String(opts.CustomerID)
	}

	var restrictions stripe.PromotionCodeRestrictionsParams
	hasRestrictions := false
	if opts.FirstTimeTransaction {
		restrictions.FirstTimeTransaction = stripe.Bool(true)
		hasRestrictions = true
	}
	if opts.MinimumAmount > 0 {
		currency := opts.Currency
		if currency == "" {
			currency = "eur"
		}
		restrictions.MinimumAmount = stripe.Int64(opts.MinimumAmount)
		restrictions.MinimumAmountCurrency = stripe.String(currency)
		hasRestrictions = true
	}
	if hasRestrictions {
		params.Restrictions = &restrictions
	}
	return params
}

// toPromoCode takes the discount from the coupon we created; the promotion code may only reference it by ID
func toPromoCode(pc *stripe.PromotionCode, coupon *stripe.Coupon) *models.PromoCode {
	return &models.PromoCode{
		ID:   pc.ID,
		Code: pc.Code,
		Coupon: models.Coupon{
			ID:         coupon.ID,
			PercentOff: coupon.PercentOff,
			AmountOff:  coupon.AmountOff,
			Currency:   string(coupon.Currency),
		},
		ExpiresAt:      pc.ExpiresAt,
		MaxRedemptions: pc.MaxRedemptions,
		TimesRedeemed:  pc.TimesRedeemed,
	}
}

// errorMessage prefers the Stripe-facing message over the wrapped Go error text
func errorMessage(err error) string {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		return stripeErr.Msg
	}
	return err.Error()
}
