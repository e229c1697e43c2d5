package models

// Event types accepted on the payment endpoints
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)

// FlowKind is the explicit classification an upstream system may send instead of a description
type FlowKind string

const (
	FlowPayment              FlowKind = "payment"
	FlowSubscriptionCreation FlowKind = "subscription_creation"
	FlowSubscriptionUpdate   FlowKind = "subscription_update"
	FlowUnknown              FlowKind = "unknown"
)

// WebhookPayload is the flattened payment notification received on /receivePayment
type WebhookPayload struct {
	EventType     string   `json:"event_type"`
	Description   string   `json:"description,omitempty"`
	LatestCharge  string   `json:"latest_charge,omitempty"`
	PaymentIntent string   `json:"payment_intent,omitempty"`
	Flow          FlowKind `json:"flow,omitempty"`
}

// PaymentData is everything we can resolve about a checkout from a charge
type PaymentData struct {
	FirstName          string
	LastName           string
	Email              string
	CustomerID         string
	PaymentIntentID    string
	InvoiceID          string
	ProductDescription string
	ProductID          string
	PromotionCode      string
}

// FlowResult is what the flow router hands back to the endpoint
type FlowResult struct {
	FlowType string
	Data     any
}

type CustomerData struct {
	ID        string `json:"id"`
	FirstName string `json:"prenom"`
	LastName  string `json:"nom"`
	Email     string `json:"email"`
}

type InvoiceData struct {
	ID                 string `json:"id"`
	ProductDescription string `json:"product_description"`
}

type SubscriptionRef struct {
	ID string `json:"id"`
}

// PaymentFlowData is the response data for the payment and subscription creation flows
type PaymentFlowData struct {
	PaymentIntentID string           `json:"payment_intent_id"`
	Customer        CustomerData     `json:"customer"`
	Invoice         InvoiceData      `json:"invoice"`
	ProductID       string           `json:"product_id"`
	PromotionCode   string           `json:"promotion_code"`
	Subscription    *SubscriptionRef `json:"subscription"`
	ChargeID        string           `json:"charge_id"`
}

// SubscriptionFlowData is the response data for the subscription update flow
type SubscriptionFlowData struct {
	Subscription SubscriptionRef `json:"subscription"`
	ChargeID     string          `json:"charge_id"`
}

// PassThroughData echoes identifiers for flows we do not process
type PassThroughData struct {
	LatestCharge  string `json:"latest_charge"`
	PaymentIntent string `json:"payment_intent,omitempty"`
}
