package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"paymenthook/config"
	"paymenthook/logging"
	"paymenthook/models"
	"paymenthook/payment"
	"paymenthook/records"
	"paymenthook/utils"
)

// Flat policy constants
const (
	flatPercentOff     = 20
	flatMaxRedemptions = 1
	flatValidity       = 6 * 30 * 24 * time.Hour
	flatCodePrefix     = "PARRAINAGE-"
)

// PromoCodeIssuer creates a coupon and its promotion code
type PromoCodeIssuer interface {
	Issue(ctx context.Context, couponOpts payment.CouponOptions, promoOpts payment.PromoCodeOptions) models.PromoCodeResult
	IssueReferral(ctx context.Context, code string, productIDs []string, expiresAt int64) models.PromoCodeResult
}

// PromoService issues one referral code per customer and writes it back to the customer record
type PromoService struct {
	store    records.Store
	issuer   PromoCodeIssuer
	policy   string
	mailer   *PromoMailer
	notifier Notifier
	now      func() time.Time
}

// NewPromoService builds the service. mailer may be nil to skip the email; notifier may be nil.
func NewPromoService(store records.Store, issuer PromoCodeIssuer, policy string, mailer *PromoMailer, notifier Notifier) *PromoService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &PromoService{
		store:    store,
		issuer:   issuer,
		policy:   policy,
		mailer:   mailer,
		notifier: notifier,
		now:      time.Now,
	}
}

// CreatePromo returns the customer's existing code or issues a new one.
// Returned errors are *models.Error.
func (s *PromoService) CreatePromo(ctx context.Context, payload models.PromoPayload) (*models.PromoOutcome, error) {
	log := logging.For(ctx, "Promo")

	email := strings.TrimSpace(payload.Email)
	if email == "" {
		return nil, models.Errorf(models.ErrValidation, "email is required")
	}

	customer, err := s.store.FindCustomerByEmail(ctx, email)
	if errors.Is(err, records.ErrCustomerNotFound) {
		log.Info("no customer for email", "email", email)
		return nil, models.Errorf(models.ErrNotFound, "no customer found for email %s", email)
	}
	if err != nil {
		return nil, models.Wrap(models.ErrUpstream, err, "unable to look up customer")
	}

	if s.policy == config.PolicyFlat && !customer.ActiveEngagement {
		return nil, models.Errorf(models.ErrConflict, "customer has no active engagement")
	}

	if customer.ReferralCode != "" {
		log.Info("customer already has a referral code", "record_id", customer.RecordID, "code", customer.ReferralCode)
		return &models.PromoOutcome{
			UserID:     customer.RecordID,
			PromoCode:  customer.ReferralCode,
			IsExisting: true,
		}, nil
	}

	var result models.PromoCodeResult
	if s.policy == config.PolicyFlat {
		result = s.issueFlat(ctx, customer)
	} else {
		result, err = s.issueForPurchase(ctx, customer, strings.TrimSpace(payload.PaymentID))
		if err != nil {
			return nil, err
		}
	}
	if !result.Success {
		return nil, models.Wrap(models.ErrUpstream, errors.New(result.Error), "unable to create promotion code")
	}
	promo := result.PromoCode

	if err := s.store.SetReferralCode(ctx, customer.RecordID, promo.Code); err != nil {
		log.Error("referral code issued but not saved", "record_id", customer.RecordID, "code", promo.Code, "error", err)
		return nil, models.Wrap(models.ErrUpstream, err, "unable to save referral code")
	}
	log.Info("referral code issued", "record_id", customer.RecordID, "code", promo.Code, "promo_id", promo.ID)

	if s.mailer != nil {
		if _, err := s.mailer.SendPromoCode(ctx, email, promo.Code, customer.FirstName); err != nil {
			log.Error("referral email failed", "email", email, "error", err)
		}
	}
	s.notifier.Notify(ctx, fmt.Sprintf("Referral code %s issued to %s", promo.Code, email))

	return &models.PromoOutcome{
		UserID:    customer.RecordID,
		PromoCode: promo.Code,
		Details: &models.PromoDetails{
			ID:             promo.ID,
			CouponID:       promo.Coupon.ID,
			PercentOff:     promo.Coupon.PercentOff,
			ExpiresAt:      promo.ExpiresAt,
			MaxRedemptions: promo.MaxRedemptions,
		},
	}, nil
}

// issueForPurchase scopes the code to subscription products and expires it with the paid subscription
func (s *PromoService) issueForPurchase(ctx context.Context, customer *models.Customer, paymentID string) (models.PromoCodeResult, error) {
	if strings.TrimSpace(customer.FirstName) == "" || strings.TrimSpace(customer.LastName) == "" {
		return models.PromoCodeResult{}, models.Errorf(models.ErrValidation, "customer first and last name are required")
	}
	if paymentID == "" {
		return models.PromoCodeResult{}, models.Errorf(models.ErrValidation, "paymentId is required")
	}

	purchase, err := s.store.FindPurchaseByPaymentID(ctx, paymentID)
	if errors.Is(err, records.ErrPurchaseNotFound) {
		return models.PromoCodeResult{}, models.Errorf(models.ErrNotFound, "no purchase found for payment %s", paymentID)
	}
	if err != nil {
		return models.PromoCodeResult{}, models.Wrap(models.ErrUpstream, err, "unable to look up purchase")
	}

	productIDs, err := s.store.ListSubscriptionProductIDs(ctx)
	if errors.Is(err, records.ErrNoProducts) {
		return models.PromoCodeResult{}, models.Errorf(models.ErrNotFound, "no subscription products found")
	}
	if err != nil {
		return models.PromoCodeResult{}, models.Wrap(models.ErrUpstream, err, "unable to list subscription products")
	}

	if purchase.EndDate == "" {
		return models.PromoCodeResult{}, models.Errorf(models.ErrValidation, "purchase %s has no end date", purchase.RecordID)
	}
	expiresAt, err := ParseEndDate(purchase.EndDate)
	if err != nil {
		return models.PromoCodeResult{}, models.Wrap(models.ErrValidation, err, "purchase end date is not a valid date")
	}

	code := utils.ReferralCode(customer.FirstName, customer.LastName)
	if code == "" {
		return models.PromoCodeResult{}, models.Errorf(models.ErrValidation, "customer name has no usable letters for a code")
	}

	return s.issuer.IssueReferral(ctx, code, productIDs, expiresAt), nil
}

func (s *PromoService) issueFlat(ctx context.Context, customer *models.Customer) models.PromoCodeResult {
	code := flatCodePrefix + customer.RecordID
	return s.issuer.Issue(ctx,
		payment.CouponOptions{
			PercentOff: flatPercentOff,
			Duration:   payment.DurationOnce,
			Name:       fmt.Sprintf("Parrainage %s", code),
		},
		payment.PromoCodeOptions{
			Code:           code,
			MaxRedemptions: flatMaxRedemptions,
			ExpiresAt:      s.now().Add(flatValidity).Unix(),
		},
	)
}

// ParseEndDate accepts a date (taken at midnight UTC) or an RFC 3339 timestamp and returns Unix seconds
func ParseEndDate(value string) (int64, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t.Unix(), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return 0, fmt.Errorf("parse end date %q: %w", value, err)
	}
	return t.Unix(), nil
}
