package services

import (
	"context"
	"fmt"
	"time"

	"cybersite/internal/config"
	"cybersite/internal/utils/logger"

	"github.com/wneessen/go-mail"
)

// Message is one rendered email ready for delivery.
type Message struct {
	ToEmail        string
	ToName         string
	Subject        string
	HTML           string
	Text           string
	UnsubscribeURL string
}

type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// SMTPMailer delivers messages through the configured SMTP relay.
type SMTPMailer struct {
	cfg    config.MailConfig
	logger *logger.Logger
}

func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, logger: logger.New("MAILER")}
}

func (m *SMTPMailer) client() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTimeout(30 * time.Second),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}
	return mail.NewClient(m.cfg.Host, opts...)
}

// build turns a Message into a go-mail message with an HTML body and a
// plain-text alternative.
func (m *SMTPMailer) build(msg *Message) (*mail.Msg, error) {
	out := mail.NewMsg()
	if err := out.FromFormat(m.cfg.FromName, m.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := out.AddToFormat(msg.ToName, msg.ToEmail); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", msg.ToEmail, err)
	}
	out.Subject(msg.Subject)
	out.SetMessageID()
	if msg.UnsubscribeURL != "" {
		out.SetGenHeader(mail.HeaderListUnsubscribe, "<"+msg.UnsubscribeURL+">")
	}
	out.SetBodyString(mail.TypeTextHTML, msg.HTML)
	if msg.Text != "" {
		out.AddAlternativeString(mail.TypeTextPlain, msg.Text)
	}
	return out, nil
}

func (m *SMTPMailer) Send(ctx context.Context, msg *Message) error {
	out, err := m.build(msg)
	if err != nil {
		return err
	}
	client, err := m.client()
	if err != nil {
		return m.logger.Error("Failed to create SMTP client", err)
	}
	if err := client.DialAndSendWithContext(ctx, out); err != nil {
		return m.logger.Error("Failed to send email to %s", err, msg.ToEmail)
	}
	m.logger.Debug("📧 Sent %q to %s", msg.Subject, msg.ToEmail)
	return nil
}
