package service

import (
	"fmt"
	"net/smtp"

	"github.com/nazirsaif/nexus-sub000/internal/config"

	"github.com/sirupsen/logrus"
)

// Mailer delivers transactional mail (OTP codes, verification links).
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends mail through a plain SMTP relay.
type SMTPMailer struct {
	cfg config.MailConfig
}

func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	addr := m.cfg.Host + ":" + m.cfg.Port
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		m.cfg.From, to, subject, body))

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}

// LogMailer logs mail instead of sending it. Used when MAIL_ENABLED is off.
type LogMailer struct{}

func (LogMailer) Send(to, subject, body string) error {
	logrus.WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
		"body":    body,
	}).Info("mail (delivery disabled)")
	return nil
}

// NewMailer picks the configured implementation.
func NewMailer(cfg config.MailConfig) Mailer {
	if cfg.Enabled && cfg.Host != "" {
		return NewSMTPMailer(cfg)
	}
	return LogMailer{}
}
