package services

import (
	"context"
	"fmt"

	brevo "github.com/getbrevo/brevo-go/lib"

	"paymenthook/logging"
)

// Mailer sends transactional template emails
type Mailer interface {
	SendTemplate(ctx context.Context, to string, templateID int64, params map[string]any) (string, error)
}

// MailService sends Brevo template emails from a fixed sender
type MailService struct {
	client *brevo.APIClient
	sender brevo.SendSmtpEmailSender
}

// NewMailService builds a Brevo client. apiURL overrides the API endpoint when set.
func NewMailService(apiKey, apiURL, senderName, senderEmail string) *MailService {
	cfg := brevo.NewConfiguration()
	cfg.AddDefaultHeader("api-key", apiKey)
	if apiURL != "" {
		cfg.BasePath = apiURL
	}
	return &MailService{
		client: brevo.NewAPIClient(cfg),
		sender: brevo.SendSmtpEmailSender{Name: senderName, Email: senderEmail},
	}
}

// SendTemplate sends templateID to a single recipient and returns the Brevo message id
func (m *MailService) SendTemplate(ctx context.Context, to string, templateID int64, params map[string]any) (string, error) {
	sender := m.sender
	email := brevo.SendSmtpEmail{
		Sender:     &sender,
		To:         []brevo.SendSmtpEmailTo{{Email: to}},
		TemplateId: templateID,
	}
	if len(params) > 0 {
		// The SDK types params as *interface{}
		var p interface{} = params
		email.Params = &p
	}

	result, _, err := m.client.TransactionalEmailsApi.SendTransacEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("send template %d to %s: %w", templateID, to, err)
	}
	logging.For(ctx, "Mail").Info("template email sent", "template_id", templateID, "message_id", result.MessageId)
	return result.MessageId, nil
}

// PromoMailer sends the referral-code template
type PromoMailer struct {
	mailer     Mailer
	templateID int64
}

func NewPromoMailer(mailer Mailer, templateID int64) *PromoMailer {
	return &PromoMailer{mailer: mailer, templateID: templateID}
}

// SendPromoCode sends the referral code. The template reads PRENOM, code-parrain and EMAIL.
func (p *PromoMailer) SendPromoCode(ctx context.Context, email, code, firstName string) (string, error) {
	if firstName == "" {
		firstName = "Cher client"
	}
	return p.mailer.SendTemplate(ctx, email, p.templateID, map[string]any{
		"PRENOM":       firstName,
		"code-parrain": code,
		"EMAIL":        email,
	})
}
