package contact

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/Zachkp/rest-portfolio/internal/config"
)

// Mailer delivers a submission.
type Mailer interface {
	Send(ctx context.Context, f Form) error
}

// Simulated accepts every submission without sending anything.
type Simulated struct{}

func (Simulated) Send(ctx context.Context, _ Form) error {
	return ctx.Err()
}

// SMTPMailer emails submissions to the site owner.
type SMTPMailer struct {
	cfg      config.SMTPConfig
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailer sends through the configured server.
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, sendMail: smtp.SendMail}
}

// NewMailer picks SMTP delivery when credentials exist and simulation otherwise.
func NewMailer(cfg config.SMTPConfig) Mailer {
	if cfg.Enabled() {
		return NewSMTPMailer(cfg)
	}
	return Simulated{}
}

func (m *SMTPMailer) Send(ctx context.Context, f Form) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !m.cfg.Enabled() {
		return fmt.Errorf("SMTP credentials not configured")
	}
	to := m.cfg.To
	if to == "" {
		to = m.cfg.User
	}
	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)
	if err := m.sendMail(m.cfg.Host+":"+m.cfg.Port, auth, m.cfg.User, []string{to}, m.message(to, f)); err != nil {
		return fmt.Errorf("send contact email: %w", err)
	}
	return nil
}

func (m *SMTPMailer) message(to string, f Form) []byte {
	body := fmt.Sprintf(`
New contact form submission from your portfolio:

Name: %s
Email: %s
Subject: %s
Message:
%s

---
Sent from your portfolio contact form
`, f.Name, f.Email, f.Subject, f.Message)

	return []byte("To: " + to + "\r\n" +
		"Subject: Portfolio Contact: " + headerSafe(f.Subject) + "\r\n" +
		"From: " + m.cfg.User + "\r\n" +
		"Reply-To: " + headerSafe(f.Email) + "\r\n" +
		"\r\n" +
		body + "\r\n")
}

// headerSafe drops CR and LF so form input cannot inject headers.
func headerSafe(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r != '\r' && r != '\n' {
			out = append(out, r)
		}
	}
	return string(out)
}
