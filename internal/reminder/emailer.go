package reminder

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/Suhailakram0318/AI-call/internal/config"
)

const reminderSubject = "Loan Repayment Reminder"

// Mailer delivers the reminder message.
type Mailer interface {
	SendReminder(summary, repaymentDate string) error
}

// SMTPMailer submits the reminder over an authenticated SMTP session
// (STARTTLS on the standard submission port).
type SMTPMailer struct {
	cfg config.SMTPConfig
}

var _ Mailer = (*SMTPMailer)(nil)

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) SendReminder(summary, repaymentDate string) error {
	if m.cfg.Host == "" {
		return fmt.Errorf("smtp not configured")
	}

	body := fmt.Sprintf(`Hi,

This is a reminder regarding your scheduled repayment.

Summary from the call:
%s

Repayment Date: %s

Thank you,
Aindriya Bank`, summary, repaymentDate)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.User)
	msg.SetHeader("To", m.cfg.Recipient)
	msg.SetHeader("Subject", reminderSubject)
	msg.SetBody("text/plain", body)

	dialer := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.User, m.cfg.Password)
	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send reminder: %w", err)
	}
	return nil
}

// NopMailer drops reminders. Used when SMTP is not configured.
type NopMailer struct{}

func (NopMailer) SendReminder(summary, repaymentDate string) error { return nil }

