package models

// PromoPayload is the body accepted by /createPromo
type PromoPayload struct {
	Email     string `json:"email"`
	PaymentID string `json:"paymentId"`
}

type Coupon struct {
	ID         string  `json:"id"`
	PercentOff float64 `json:"percent_off,omitempty"`
	AmountOff  int64   `json:"amount_off,omitempty"`
	Currency   string  `json:"currency,omitempty"`
}

type PromoCode struct {
	ID             string `json:"id"`
	Code           string `json:"code"`
	Coupon         Coupon `json:"coupon"`
	ExpiresAt      int64  `json:"expires_at,omitempty"`
	MaxRedemptions int64  `json:"max_redemptions,omitempty"`
	TimesRedeemed  int64  `json:"times_redeemed"`
}

// PromoCodeResult never carries a raw SDK error, only its message
type PromoCodeResult struct {
	Success   bool
	PromoCode *PromoCode
	Error     string
}

// Customer is a row of the customers table
type Customer struct {
	RecordID         string
	Email            string
	FirstName        string
	LastName         string
	ActiveEngagement bool
	ReferralCode     string
}

// Purchase is a row of the purchases table, keyed by Stripe payment id
type Purchase struct {
	RecordID  string
	PaymentID string
	EndDate   string
}

// PromoDetails is the metadata returned alongside a freshly issued code
type PromoDetails struct {
	ID             string  `json:"id"`
	CouponID       string  `json:"couponId"`
	PercentOff     float64 `json:"percentOff,omitempty"`
	ExpiresAt      int64   `json:"expiresAt,omitempty"`
	MaxRedemptions int64   `json:"maxRedemptions,omitempty"`
}

// PromoOutcome is what the promo service returns for a successful call
type PromoOutcome struct {
	UserID     string
	PromoCode  string
	IsExisting bool
	Details    *PromoDetails
}
