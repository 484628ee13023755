package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"
)

// MailerConfig holds SMTP relay configuration
type MailerConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	SenderName string
}

// Mailer delivers messages over SMTP. This is the production
// notification gateway.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	sender string
	logger *zap.Logger
}

// NewMailer creates a new SMTP mailer
func NewMailer(cfg MailerConfig, logger *zap.Logger) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		sender: cfg.SenderName,
		logger: logger,
	}
}

// Send delivers msg to all recipients in a single SMTP exchange
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("message has no recipients")
	}

	mail := gomail.NewMessage()
	if m.sender != "" {
		mail.SetAddressHeader("From", m.from, m.sender)
	} else {
		mail.SetHeader("From", m.from)
	}
	mail.SetHeader("To", msg.To...)
	mail.SetHeader("Subject", msg.Subject)
	mail.SetBody("text/plain", msg.Body)

	if err := m.dialer.DialAndSend(mail); err != nil {
		m.logger.Error("Failed to send mail",
			zap.String("event", msg.Event),
			zap.Strings("to", msg.To),
			zap.Error(err))
		return fmt.Errorf("failed to send mail: %w", err)
	}

	m.logger.Info("Mail sent",
		zap.String("event", msg.Event),
		zap.Int("recipients", len(msg.To)))
	return nil
}
