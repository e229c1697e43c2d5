package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Schema names the Airtable tables and fields the service reads and writes.
// The defaults match the production base; a YAML file may override any of them.
type Schema struct {
	Customers CustomersTable `yaml:"customers"`
	Purchases PurchasesTable `yaml:"purchases"`
	Products  ProductsTable  `yaml:"products"`
	// Checkout custom field keys holding the buyer's name
	CheckoutFirstNameKey string `yaml:"checkout_first_name_key"`
	CheckoutLastNameKey  string `yaml:"checkout_last_name_key"`
}

type CustomersTable struct {
	Table            string `yaml:"table"`
	Email            string `yaml:"email"`
	FirstName        string `yaml:"first_name"`
	LastName         string `yaml:"last_name"`
	ActiveEngagement string `yaml:"active_engagement"`
	ReferralCode     string `yaml:"referral_code"`
}

type PurchasesTable struct {
	Table     string `yaml:"table"`
	PaymentID string `yaml:"payment_id"`
	EndDate   string `yaml:"end_date"`
}

type ProductsTable struct {
	Table            string `yaml:"table"`
	Type             string `yaml:"type"`
	SubscriptionType string `yaml:"subscription_type"`
	StripeProductID  string `yaml:"stripe_product_id"`
}

func DefaultSchema() Schema {
	return Schema{
		Customers: CustomersTable{
			Table:            "Clients",
			Email:            "Email",
			FirstName:        "Prénom",
			LastName:         "Nom",
			ActiveEngagement: "Suivi en cours ?",
			ReferralCode:     "Code parrainage",
		},
		Purchases: PurchasesTable{
			Table:     "Achats",
			PaymentID: "Stripe Payment ID",
			EndDate:   "Date de fin",
		},
		Products: ProductsTable{
			Table:            "Produits",
			Type:             "Type",
			SubscriptionType: "Abonnement",
			StripeProductID:  "Stripe Product ID",
		},
		CheckoutFirstNameKey: "prnom",
		CheckoutLastNameKey:  "nom",
	}
}

// LoadSchema returns the default schema, overlaid with the file at path when path is set.
func LoadSchema(path string) (Schema, error) {
	schema := DefaultSchema()
	if path == "" {
		return schema, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return schema, fmt.Errorf("config.LoadSchema: %w", err)
	}
	// Unmarshalling into the populated struct keeps defaults for absent keys
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return schema, fmt.Errorf("config.LoadSchema: parse %s: %w", path, err)
	}
	return schema, nil
}
