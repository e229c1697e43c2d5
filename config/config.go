package config

import (
	"fmt"

	env "github.com/caarlos0/env/v11"
)

// Promo policies
const (
	PolicyPurchase = "purchase"
	PolicyFlat     = "flat"
)

// Config holds application configuration
type Config struct {
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv   string `env:"APP_ENV" envDefault:"production"`

	StripeSecretKey     string `env:"STRIPE_SECRET_KEY,required,notEmpty"`
	StripeAPIVersion    string `env:"STRIPE_API_VERSION"`
	StripeAPIURL        string `env:"STRIPE_API_URL"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`

	AirtableAPIKey     string `env:"AIRTABLE_API_KEY,required,notEmpty"`
	AirtableBaseID     string `env:"AIRTABLE_BASE_ID,required,notEmpty"`
	AirtableAPIURL     string `env:"AIRTABLE_API_URL"`
	AirtableSchemaFile string `env:"AIRTABLE_SCHEMA_FILE"`

	BrevoAPIKey          string `env:"BREVO_API_KEY"`
	BrevoAPIURL          string `env:"BREVO_API_URL"`
	BrevoSenderName      string `env:"BREVO_SENDER_NAME" envDefault:"Lili Choose Eat"`
	BrevoSenderEmail     string `env:"BREVO_SENDER_EMAIL" envDefault:"noreply@lili-choose-eat.com"`
	BrevoPromoTemplateID int64  `env:"BREVO_PROMO_TEMPLATE_ID" envDefault:"1"`

	SlackBotToken  string `env:"SLACK_BOT_TOKEN"`
	SlackChannelID string `env:"SLACK_CHANNEL_ID"`

	PromoPolicy              string `env:"PROMO_POLICY" envDefault:"purchase"`
	PromoEmailEnabled        bool   `env:"PROMO_EMAIL_ENABLED" envDefault:"false"`
	PromoDeleteOrphanCoupons bool   `env:"PROMO_DELETE_ORPHAN_COUPONS" envDefault:"true"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.PromoPolicy {
	case PolicyPurchase, PolicyFlat:
	default:
		return fmt.Errorf("PROMO_POLICY must be %q or %q, got %q", PolicyPurchase, PolicyFlat, c.PromoPolicy)
	}
	if c.PromoEmailEnabled && c.BrevoAPIKey == "" {
		return fmt.Errorf("BREVO_API_KEY is required when PROMO_EMAIL_ENABLED is set")
	}
	if c.SlackBotToken != "" && c.SlackChannelID == "" {
		return fmt.Errorf("SLACK_CHANNEL_ID is required when SLACK_BOT_TOKEN is set")
	}
	return nil
}
