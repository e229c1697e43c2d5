package payment

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
)

func TestIssueFixedDiscount(t *testing.T) {
	f := newFakeProcessor()
	issuer := NewPromoIssuer(f, true)

	res := issuer.Issue(context.Background(),
		CouponOptions{PercentOff: 20, Duration: DurationOnce, Name: "Code Parrainage 20%"},
		PromoCodeOptions{Code: "PARRAINAGE-rec1", MaxRedemptions: 1, ExpiresAt: 1767225600},
	)

	require.True(t, res.Success, res.Error)
	require.Len(t, f.couponParams, 1)
	require.Len(t, f.promoParams, 1)

	cp := f.couponParams[0]
	assert.Equal(t, 20.0, *cp.PercentOff)
	assert.Nil(t, cp.AmountOff)
	assert.Equal(t, DurationOnce, *cp.Duration)
	assert.Nil(t, cp.DurationInMonths)

	pp := f.promoParams[0]
	assert.Equal(t, "coupon_1", *pp.Coupon)
	assert.Equal(t, "PARRAINAGE-rec1", *pp.Code)
	assert.Equal(t, int64(1), *pp.MaxRedemptions)
	assert.Equal(t, int64(1767225600), *pp.ExpiresAt)
	assert.Nil(t, pp.Restrictions)

	assert.Equal(t, "PARRAINAGE-rec1", res.PromoCode.Code)
	assert.Equal(t, "coupon_1", res.PromoCode.Coupon.ID)
	assert.Equal(t, int64(1), res.PromoCode.MaxRedemptions)
}

func TestIssueAmountOffRepeatingWithRestrictions(t *testing.T) {
	f := newFakeProcessor()
	issuer := NewPromoIssuer(f, true)

	res := issuer.Issue(context.Background(),
		CouponOptions{AmountOff: 500, Duration: DurationRepeating, DurationInMonths: 3},
		PromoCodeOptions{CustomerID: "cus_1", FirstTimeTransaction: true, MinimumAmount: 2000},
	)

	require.True(t, res.Success, res.Error)
	cp := f.couponParams[0]
	assert.Equal(t, int64(500), *cp.AmountOff)
	assert.Equal(t, "eur", *cp.Currency)
	assert.Equal(t, int64(3), *cp.DurationInMonths)

	pp := f.promoParams[0]
	assert.Nil(t, pp.Code)
	require.NotNil(t, pp.Restrictions)
	assert.True(t, *pp.Restrictions.FirstTimeTransaction)
	assert.Equal(t, int64(2000), *pp.Restrictions.MinimumAmount)
	assert.Equal(t, "eur", *pp.Restrictions.MinimumAmountCurrency)
	assert.Equal(t, "AUTOGEN", res.PromoCode.Code)
	assert.Equal(t, "eur", res.PromoCode.Coupon.Currency)
}

func TestIssueValidation(t *testing.T) {
	tests := []struct {
		name    string
		opts    CouponOptions
		wantErr string
	}{
		{"neither discount", CouponOptions{Duration: DurationOnce}, "either percent off or amount off"},
		{"both discounts", CouponOptions{PercentOff: 10, AmountOff: 100}, "mutually exclusive"},
		{"repeating without months", CouponOptions{PercentOff: 10, Duration: DurationRepeating}, "month count"},
		{"unknown duration", CouponOptions{PercentOff: 10, Duration: "weekly"}, "unknown duration"},
		{"percent above 100", CouponOptions{PercentOff: 120}, "between 0 and 100"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFakeProcessor()
			res := NewPromoIssuer(f, true).Issue(context.Background(), tc.opts, PromoCodeOptions{})

			assert.False(t, res.Success)
			assert.Contains(t, res.Error, tc.wantErr)
			assert.Empty(t, f.couponParams, "no write on invalid options")
		})
	}
}

func TestIssueReferral(t *testing.T) {
	f := newFakeProcessor()
	res := NewPromoIssuer(f, true).IssueReferral(context.Background(), "EMILEDU", []string{"prod_a", "prod_b"}, 1748736000)

	require.True(t, res.Success, res.Error)
	cp := f.couponParams[0]
	assert.Equal(t, float64(ReferralPercentOff), *cp.PercentOff)
	assert.Equal(t, DurationOnce, *cp.Duration)
	require.NotNil(t, cp.AppliesTo)
	assert.Equal(t, []string{"prod_a", "prod_b"}, stringValues(cp.AppliesTo.Products))

	pp := f.promoParams[0]
	assert.Equal(t, "EMILEDU", *pp.Code)
	assert.Equal(t, int64(1748736000), *pp.ExpiresAt)
	assert.Nil(t, pp.MaxRedemptions)

	assert.Equal(t, "EMILEDU", res.PromoCode.Code)
	assert.Equal(t, float64(ReferralPercentOff), res.PromoCode.Coupon.PercentOff)
}

func TestToPromoCodeKeepsCreatedCouponDiscount(t *testing.T) {
	created := &stripe.Coupon{ID: "co_1", AmountOff: 500, Currency: stripe.Currency("eur")}
	pc := &stripe.PromotionCode{ID: "promo_1", Code: "SAVE5", Coupon: &stripe.Coupon{ID: "co_1"}}

	got := toPromoCode(pc, created)

	assert.Equal(t, "co_1", got.Coupon.ID)
	assert.Equal(t, int64(500), got.Coupon.AmountOff)
	assert.Equal(t, "eur", got.Coupon.Currency)
}

func stringValues(ptrs []*string) []string {
	out := make([]string, 0, len(ptrs))
	for _, p := range ptrs {
		out = append(out, *p)
	}
	return out
}

func TestIssueReferralRequiresProducts(t *testing.T) {
	f := newFakeProcessor()
	res := NewPromoIssuer(f, true).IssueReferral(context.Background(), "EMILEDU", nil, 1748736000)

	assert.False(t, res.Success)
	assert.Empty(t, f.couponParams)
}

func TestIssueCouponFailure(t *testing.T) {
	f := newFakeProcessor()
	f.couponErr = fmt.Errorf("create coupon: %w", &stripe.Error{Msg: "Invalid percent_off"})

	res := NewPromoIssuer(f, true).Issue(context.Background(), CouponOptions{PercentOff: 10}, PromoCodeOptions{})

	assert.False(t, res.Success)
	assert.Equal(t, "Invalid percent_off", res.Error)
	assert.Empty(t, f.promoParams)
}

func TestIssuePromotionCodeFailure(t *testing.T) {
	tests := []struct {
		name        string
		deleteOrph  bool
		deleteErr   error
		wantDeleted []string
		wantInError string
	}{
		{
			name:        "orphan deleted",
			deleteOrph:  true,
			wantDeleted: []string{"coupon_1"},
			wantInError: "code already exists",
		},
		{
			name:        "orphan delete fails",
			deleteOrph:  true,
			deleteErr:   errStripeDown,
			wantInError: "could not be deleted",
		},
		{
			name:        "orphan kept",
			deleteOrph:  false,
			wantInError: "left without a promotion code",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFakeProcessor()
			f.promoErr = &stripe.Error{Msg: "code already exists"}
			f.deleteErr = tc.deleteErr

			res := NewPromoIssuer(f, tc.deleteOrph).Issue(context.Background(), CouponOptions{PercentOff: 10}, PromoCodeOptions{Code: "DUP"})

			assert.False(t, res.Success)
			assert.Nil(t, res.PromoCode)
			assert.Contains(t, res.Error, tc.wantInError)
			assert.Equal(t, tc.wantDeleted, f.deleted)
			assert.Len(t, f.couponParams, 1, "coupon is never retried")
			assert.Len(t, f.promoParams, 1, "promotion code is never retried")
		})
	}
}
