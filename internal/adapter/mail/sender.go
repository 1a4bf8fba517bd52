package mail

import (
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"
)

// Sender delivers a single message. Failures are reported to the caller but
// must never block order state changes; the notifier worker absorbs them.
type Sender interface {
	Send(to, subject, htmlBody string) error
}

// SMTPSender delivers mail through an SMTP relay.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender configures the relay connection.
func NewSMTPSender(host string, port int, user, password, from string) *SMTPSender {
	if from == "" {
		from = user
	}
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
	}
}

// Send delivers one message.
func (s *SMTPSender) Send(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// NoopSender is used when no SMTP relay is configured.
type NoopSender struct {
	logger *slog.Logger
}

// NewNoopSender logs instead of delivering.
func NewNoopSender(logger *slog.Logger) *NoopSender {
	return &NoopSender{logger: logger}
}

// Send records the message and succeeds.
func (s *NoopSender) Send(to, subject, htmlBody string) error {
	s.logger.Info("mail delivery disabled", slog.String("to", to), slog.String("subject", subject))
	return nil
}
