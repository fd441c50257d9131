package mail

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// EmailClient sends one plain-text message.
type EmailClient interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

// SendGridClient implements EmailClient.
type SendGridClient struct {
	apiKey   string
	fromName string
	log      *zap.Logger
}

func NewSendGridClient(apiKey, fromName string, log *zap.Logger) *SendGridClient {
	if log == nil {
		log = zap.NewNop()
	}
	return &SendGridClient{apiKey: strings.TrimSpace(apiKey), fromName: fromName, log: log.Named("mail")}
}

func (c *SendGridClient) Send(ctx context.Context, from, to, subject, body string) error {
	if c.apiKey == "" {
		return errors.New("mail: sendgrid api key is empty")
	}
	if from == "" {
		return errors.New("mail: from address is empty")
	}
	if to == "" {
		return errors.New("mail: to address is empty")
	}

	message := sgmail.NewSingleEmail(
		sgmail.NewEmail(c.fromName, from),
		subject,
		sgmail.NewEmail("", to),
		body,
		"<pre>"+html.EscapeString(body)+"</pre>",
	)

	resp, err := sendgrid.NewSendClient(c.apiKey).SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("mail: sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		c.log.Warn("[sendgrid] rejected", zap.Int("status", resp.StatusCode), zap.String("body", resp.Body))
		return fmt.Errorf("mail: sendgrid send failed: status=%d", resp.StatusCode)
	}

	c.log.Info("[sendgrid] mail sent", zap.Int("status", resp.StatusCode), zap.String("subject", subject))
	return nil
}
