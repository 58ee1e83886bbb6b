// Package notify alerts the sales team about hot leads over SES email and,
// for the hottest ones, SNS SMS. Called fire-and-forget from the webhook
// service; a failed alert never blocks the reply.
package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/beforest/forest-guide/internal/common/config"
	"github.com/beforest/forest-guide/internal/common/logger"
)

// HotLead carries what the sales team needs to act on an alert.
type HotLead struct {
	DisplayName string
	ContactID   string
	Intent      string
	Stage       string
	Score       int
	Message     string
}

// EmailSender is the slice of the SES API the notifier uses.
type EmailSender interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SMSSender is the slice of the SNS API the notifier uses.
type SMSSender interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Notifier fans a hot lead out to the configured channels.
type Notifier struct {
	email  EmailSender
	sms    SMSSender
	cfg    config.AlertsConfig
	logger logger.Logger
}

func New(email EmailSender, sms SMSSender, cfg config.AlertsConfig, log logger.Logger) *Notifier {
	return &Notifier{
		email:  email,
		sms:    sms,
		cfg:    cfg,
		logger: log.WithFields(map[string]interface{}{"component": "notify"}),
	}
}

// ShouldAlert reports whether a score clears any enabled channel's threshold.
func (n *Notifier) ShouldAlert(score int) bool {
	if n.cfg.EmailEnabled && score >= n.cfg.EmailMinScore {
		return true
	}
	if n.cfg.SMSEnabled && score >= n.cfg.SMSMinScore {
		return true
	}
	return false
}

// NotifyHotLead sends to every channel the score clears. Channels fail
// independently; the first error is returned after all sends were attempted.
func (n *Notifier) NotifyHotLead(ctx context.Context, lead HotLead) error {
	var firstErr error

	if n.cfg.EmailEnabled && lead.Score >= n.cfg.EmailMinScore {
		if err := n.sendEmail(ctx, lead); err != nil {
			n.logger.Error("hot lead email failed", map[string]interface{}{
				"contact_id": lead.ContactID,
				"error":      err.Error(),
			})
			firstErr = err
		}
	}

	if n.cfg.SMSEnabled && lead.Score >= n.cfg.SMSMinScore {
		if err := n.sendSMS(ctx, lead); err != nil {
			n.logger.Error("hot lead sms failed", map[string]interface{}{
				"contact_id": lead.ContactID,
				"error":      err.Error(),
			})
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

func (n *Notifier) sendEmail(ctx context.Context, lead HotLead) error {
	name := lead.DisplayName
	if name == "" {
		name = lead.ContactID
	}

	subject := fmt.Sprintf("Hot lead: %s (score %d, %s)", name, lead.Score, lead.Intent)
	body := fmt.Sprintf(
		"Contact: %s (%s)\nIntent: %s\nStage: %s\nScore: %d\n\nLast message:\n%s\n",
		name, lead.ContactID, lead.Intent, lead.Stage, lead.Score, lead.Message,
	)

	_, err := n.email.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(n.cfg.FromEmail),
		Destination: &sestypes.Destination{
			ToAddresses: []string{n.cfg.SalesEmail},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(body)},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ses send: %w", err)
	}
	return nil
}

func (n *Notifier) sendSMS(ctx context.Context, lead HotLead) error {
	name := lead.DisplayName
	if name == "" {
		name = lead.ContactID
	}

	text := fmt.Sprintf("Hot lead %s: score %d, intent %s. Check email for details.",
		name, lead.Score, lead.Intent)

	_, err := n.sms.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(n.cfg.SalesPhone),
		Message:     aws.String(text),
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}
