package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"paymenthook/config"
	"paymenthook/handlers"
	"paymenthook/logging"
	"paymenthook/payment"
	"paymenthook/records"
	"paymenthook/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("paymenthook", cfg.LogLevel, cfg.AppEnv)

	schema, err := config.LoadSchema(cfg.AirtableSchemaFile)
	if err != nil {
		slog.Error("failed to load Airtable schema", "error", err)
		os.Exit(1)
	}

	// Stripe
	payment.CheckAPIVersion(cfg.StripeAPIVersion)
	processor := payment.NewStripeProcessor(cfg.StripeSecretKey, cfg.StripeAPIURL, nil)
	extractor := payment.NewExtractor(processor, schema.CheckoutFirstNameKey, schema.CheckoutLastNameKey)
	resolver := payment.NewResolver(processor)
	issuer := payment.NewPromoIssuer(processor, cfg.PromoDeleteOrphanCoupons)

	// Airtable
	store, err := records.NewAirtableStore(cfg.AirtableAPIKey, cfg.AirtableBaseID, cfg.AirtableAPIURL, schema)
	if err != nil {
		slog.Error("failed to create Airtable store", "error", err)
		os.Exit(1)
	}

	var notifier services.Notifier = services.NopNotifier{}
	if cfg.SlackBotToken != "" {
		notifier = services.NewSlackService(cfg.SlackBotToken, cfg.SlackChannelID, "")
		slog.Info("Slack notifications enabled", "channel", cfg.SlackChannelID)
	}

	var mailer *services.PromoMailer
	if cfg.PromoEmailEnabled {
		mail := services.NewMailService(cfg.BrevoAPIKey, cfg.BrevoAPIURL, cfg.BrevoSenderName, cfg.BrevoSenderEmail)
		mailer = services.NewPromoMailer(mail, cfg.BrevoPromoTemplateID)
		slog.Info("referral emails enabled", "template_id", cfg.BrevoPromoTemplateID)
	}

	webhookService := services.NewWebhookService(extractor, resolver, notifier)
	promoService := services.NewPromoService(store, issuer, cfg.PromoPolicy, mailer, notifier)

	var stripeWebhook *handlers.StripeWebhookHandler
	if cfg.StripeWebhookSecret != "" {
		stripeWebhook = handlers.NewStripeWebhookHandler(cfg.StripeWebhookSecret, webhookService)
		slog.Info("registered /stripe/webhook handler")
	}

	router := handlers.NewRouter(
		handlers.NewPaymentHandler(webhookService),
		handlers.NewPromoHandler(promoService),
		stripeWebhook,
	)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr, "promo_policy", cfg.PromoPolicy)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
