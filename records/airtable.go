package records

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mehanizm/airtable"

	"paymenthook/config"
	"paymenthook/models"
)

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrPurchaseNotFound = errors.New("purchase not found")
	ErrNoProducts       = errors.New("no subscription products found")
)

// Store is the customer-record side of the service
type Store interface {
	FindCustomerByEmail(ctx context.Context, email string) (*models.Customer, error)
	SetReferralCode(ctx context.Context, recordID, code string) error
	FindPurchaseByPaymentID(ctx context.Context, paymentID string) (*models.Purchase, error)
	ListSubscriptionProductIDs(ctx context.Context) ([]string, error)
}

// AirtableStore reads and writes the customers, purchases and products tables of one base.
// The Airtable client has no context support; ctx is accepted for the interface and checked before each call.
type AirtableStore struct {
	client *airtable.Client
	baseID string
	schema config.Schema
}

// NewAirtableStore builds a store for baseID. apiURL overrides the API endpoint when set.
func NewAirtableStore(apiKey, baseID, apiURL string, schema config.Schema) (*AirtableStore, error) {
	client := airtable.NewClient(apiKey)
	if apiURL != "" {
		if err := client.SetBaseURL(apiURL); err != nil {
			return nil, fmt.Errorf("records.NewAirtableStore: %w", err)
		}
	}
	return &AirtableStore{client: client, baseID: baseID, schema: schema}, nil
}

func (s *AirtableStore) table(name string) *airtable.Table {
	return s.client.GetTable(s.baseID, name)
}

func (s *AirtableStore) FindCustomerByEmail(ctx context.Context, email string) (*models.Customer, error) {
	c := s.schema.Customers
	rec, err := s.findOne(ctx, c.Table, equalsFormula(c.Email, email))
	if err != nil {
		return nil, fmt.Errorf("find customer by email: %w", err)
	}
	if rec == nil {
		return nil, ErrCustomerNotFound
	}

	return &models.Customer{
		RecordID:         rec.ID,
		Email:            stringField(rec.Fields, c.Email),
		FirstName:        stringField(rec.Fields, c.FirstName),
		LastName:         stringField(rec.Fields, c.LastName),
		ActiveEngagement: truthyField(rec.Fields, c.ActiveEngagement),
		ReferralCode:     stringField(rec.Fields, c.ReferralCode),
	}, nil
}

func (s *AirtableStore) SetReferralCode(ctx context.Context, recordID, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c := s.schema.Customers
	_, err := s.table(c.Table).UpdateRecordsPartial(&airtable.Records{
		Records: []*airtable.Record{{
			ID:     recordID,
			Fields: map[string]any{c.ReferralCode: code},
		}},
	})
	if err != nil {
		return fmt.Errorf("set referral code on %s: %w", recordID, err)
	}
	return nil
}

func (s *AirtableStore) FindPurchaseByPaymentID(ctx context.Context, paymentID string) (*models.Purchase, error) {
	p := s.schema.Purchases
	rec, err := s.findOne(ctx, p.Table, equalsFormula(p.PaymentID, paymentID))
	if err != nil {
		return nil, fmt.Errorf("find purchase by payment id: %w", err)
	}
	if rec == nil {
		return nil, ErrPurchaseNotFound
	}
	return &models.Purchase{
		RecordID:  rec.ID,
		PaymentID: stringField(rec.Fields, p.PaymentID),
		EndDate:   stringField(rec.Fields, p.EndDate),
	}, nil
}

// ListSubscriptionProductIDs returns the Stripe product ids of every catalog row typed as a subscription
func (s *AirtableStore) ListSubscriptionProductIDs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := s.schema.Products

	var ids []string
	offset := ""
	for {
		req := s.table(p.Table).GetRecords().
			WithFilterFormula(equalsFormula(p.Type, p.SubscriptionType)).
			ReturnFields(p.StripeProductID)
		if offset != "" {
			req = req.WithOffset(offset)
		}
		recs, err := req.DoContext(ctx)
		if err != nil {
			return nil, fmt.Errorf("list subscription products: %w", err)
		}
		for _, rec := range recs.Records {
			if id := strings.TrimSpace(stringField(rec.Fields, p.StripeProductID)); id != "" {
				ids = append(ids, id)
			}
		}
		if recs.Offset == "" {
			break
		}
		offset = recs.Offset
	}
	if len(ids) == 0 {
		return nil, ErrNoProducts
	}
	return ids, nil
}

func (s *AirtableStore) findOne(ctx context.Context, table, formula string) (*airtable.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	recs, err := s.table(table).GetRecords().
		WithFilterFormula(formula).
		MaxRecords(1).
		Do()
	if err != nil {
		return nil, err
	}
	if recs == nil || len(recs.Records) == 0 {
		return nil, nil
	}
	return recs.Records[0], nil
}

// equalsFormula builds {field} = "value" with value escaped for an Airtable string literal
func equalsFormula(field, value string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(value)
	return fmt.Sprintf(`{%s} = "%s"`, field, escaped)
}

func stringField(fields map[string]any, name string) string {
	switch v := fields[name].(type) {
	case string:
		return v
	case []any:
		// Lookup and rollup fields come back as arrays
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				return s
			}
		}
	}
	return ""
}

func truthyField(fields map[string]any, name string) bool {
	switch v := fields[name].(type) {
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0
	case []any:
		return len(v) > 0
	}
	return false
}
