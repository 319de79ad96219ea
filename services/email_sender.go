package services

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"risehub/config"
	"risehub/logger"
)

// Email is one outbound message. Body is HTML.
type Email struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers an email or hands it to something that will.
type Mailer interface {
	Send(ctx context.Context, e Email) error
}

// SMTPMailer sends email directly via SMTP.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg config.Config) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		from:   cfg.Sender(),
	}
}

func (m *SMTPMailer) Send(_ context.Context, e Email) error {
	if m.from == "" {
		return fmt.Errorf("email sender not configured (set EMAIL_FROM or SMTP_USER)")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", e.To)
	msg.SetHeader("Subject", e.Subject)
	msg.SetBody("text/html", e.Body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", e.To, err)
	}

	logger.Info("Email sent to %s: %s", e.To, e.Subject)
	return nil
}

// ConsoleMailer logs emails instead of sending them. Used when SMTP is not configured.
type ConsoleMailer struct {
	log *logger.Logger
}

func NewConsoleMailer(log *logger.Logger) *ConsoleMailer {
	return &ConsoleMailer{log: log}
}

func (m *ConsoleMailer) Send(_ context.Context, e Email) error {
	m.log.WithFields(map[string]interface{}{
		"to":      e.To,
		"subject": e.Subject,
	}).Info("email (console delivery): %d bytes", len(e.Body))
	return nil
}
