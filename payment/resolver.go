package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v82"

	"paymenthook/logging"
)

var ErrSubscriptionNotFound = errors.New("subscription not found")

// subscriptionListLimit caps how many of a customer's subscriptions are considered
const subscriptionListLimit = 10

// Resolver finds the subscription a payment belongs to
type Resolver struct {
	processor Processor
}

func NewResolver(processor Processor) *Resolver {
	return &Resolver{processor: processor}
}

// ResolveFromCharge matches the payment intent's amount against the latest invoice
// of each of the customer's subscriptions and falls back to the first one listed.
// Neither step is guaranteed to pick the right subscription: an unexpanded
// latest_invoice counts as a match, and Stripe does not document the list order.
func (r *Resolver) ResolveFromCharge(ctx context.Context, chargeID string) (string, error) {
	log := logging.For(ctx, "Resolver")

	ch, err := r.processor.GetCharge(ctx, chargeID)
	if err != nil {
		return "", err
	}
	if ch.PaymentIntent == nil || ch.PaymentIntent.ID == "" {
		return "", fmt.Errorf("%w: charge %s has no payment intent", ErrSubscriptionNotFound, chargeID)
	}

	pi, err := r.processor.GetPaymentIntent(ctx, ch.PaymentIntent.ID)
	if err != nil {
		return "", err
	}
	if pi.Customer == nil || pi.Customer.ID == "" {
		return "", fmt.Errorf("%w: payment intent %s has no customer", ErrSubscriptionNotFound, pi.ID)
	}

	subs, err := r.processor.ListSubscriptions(ctx, pi.Customer.ID, subscriptionListLimit)
	if err != nil {
		return "", err
	}
	if len(subs) == 0 {
		return "", fmt.Errorf("%w: customer %s has no subscriptions", ErrSubscriptionNotFound, pi.Customer.ID)
	}

	for _, sub := range subs {
		if latestInvoiceMatches(sub, pi.Amount) {
			log.Info("subscription matched", "subscription_id", sub.ID, "amount", pi.Amount)
			return sub.ID, nil
		}
	}

	log.Warn("no subscription matched the amount, using first listed",
		"subscription_id", subs[0].ID, "amount", pi.Amount)
	return subs[0].ID, nil
}

// ResolveFromInvoice reads the subscription straight off the invoice's parent details
func (r *Resolver) ResolveFromInvoice(ctx context.Context, invoiceID string) (string, error) {
	inv, err := r.processor.GetInvoice(ctx, invoiceID)
	if err != nil {
		return "", err
	}
	if inv.Parent == nil || inv.Parent.SubscriptionDetails == nil ||
		inv.Parent.SubscriptionDetails.Subscription == nil || inv.Parent.SubscriptionDetails.Subscription.ID == "" {
		return "", fmt.Errorf("%w: invoice %s has no subscription", ErrSubscriptionNotFound, invoiceID)
	}
	return inv.Parent.SubscriptionDetails.Subscription.ID, nil
}

// An unexpanded latest_invoice only has its ID set and is treated as a match.
func latestInvoiceMatches(sub *stripe.Subscription, amount int64) bool {
	inv := sub.LatestInvoice
	if inv == nil {
		return false
	}
	if inv.Object == "" {
		return true
	}
	return inv.AmountPaid == amount
}
