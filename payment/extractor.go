package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v82"

	"paymenthook/logging"
	"paymenthook/models"
)

// ErrNoPaymentData is returned when a charge has no payment intent or the payment intent has no checkout session
var ErrNoPaymentData = errors.New("no payment data for charge")

// Extractor resolves a charge into the flat PaymentData record
type Extractor struct {
	processor    Processor
	firstNameKey string
	lastNameKey  string
}

func NewExtractor(processor Processor, firstNameKey, lastNameKey string) *Extractor {
	return &Extractor{
		processor:    processor,
		firstNameKey: firstNameKey,
		lastNameKey:  lastNameKey,
	}
}

// Extract walks charge -> checkout session -> line items -> invoice.
// paymentIntentID may be empty, in which case it is read from the charge.
func (e *Extractor) Extract(ctx context.Context, chargeID, paymentIntentID string) (*models.PaymentData, error) {
	log := logging.For(ctx, "Extractor")

	ch, err := e.processor.GetCharge(ctx, chargeID)
	if err != nil {
		return nil, err
	}

	customerID := ""
	if ch.Customer != nil {
		customerID = ch.Customer.ID
	}
	if paymentIntentID == "" && ch.PaymentIntent != nil {
		paymentIntentID = ch.PaymentIntent.ID
	}
	if paymentIntentID == "" {
		log.Warn("payment intent not found on charge", "charge_id", chargeID)
		return nil, fmt.Errorf("%w: charge %s has no payment intent", ErrNoPaymentData, chargeID)
	}

	session, err := e.processor.FindCheckoutSession(ctx, paymentIntentID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		log.Warn("no checkout session for payment intent", "payment_intent_id", paymentIntentID)
		return nil, fmt.Errorf("%w: payment intent %s has no checkout session", ErrNoPaymentData, paymentIntentID)
	}

	data := &models.PaymentData{
		FirstName:       customFieldText(session, e.firstNameKey),
		LastName:        customFieldText(session, e.lastNameKey),
		CustomerID:      customerID,
		PaymentIntentID: paymentIntentID,
	}
	if session.CustomerDetails != nil {
		data.Email = session.CustomerDetails.Email
	}
	if session.Invoice != nil {
		data.InvoiceID = session.Invoice.ID
	}
	if len(session.Discounts) > 0 && session.Discounts[0].PromotionCode != nil {
		data.PromotionCode = session.Discounts[0].PromotionCode.ID
	}

	items, err := e.processor.ListSessionLineItems(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	lineDescription := ""
	if len(items) > 0 {
		lineDescription = items[0].Description
		if items[0].Price != nil && items[0].Price.Product != nil {
			data.ProductID = items[0].Price.Product.ID
		}
	}

	if data.InvoiceID != "" {
		// Invoice lines carry the billing-period wording; a failed read only costs the description
		inv, err := e.processor.GetInvoice(ctx, data.InvoiceID)
		if err != nil {
			log.Error("failed to fetch invoice", "invoice_id", data.InvoiceID, "error", err)
		} else if inv.Lines != nil && len(inv.Lines.Data) > 0 {
			data.ProductDescription = inv.Lines.Data[0].Description
		}
	} else {
		data.ProductDescription = lineDescription
	}

	log.Info("payment data extracted",
		"charge_id", chargeID,
		"customer_id", data.CustomerID,
		"invoice_id", data.InvoiceID,
		"product_id", data.ProductID,
	)
	return data, nil
}

func customFieldText(session *stripe.CheckoutSession, key string) string {
	for _, f := range session.CustomFields {
		if f != nil && f.Key == key && f.Text != nil {
			return f.Text.Value
		}
	}
	return ""
}
