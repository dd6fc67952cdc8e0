// Package mailer sends transactional email over SMTP. When SMTP is not
// configured the mailer degrades to a logged no-op so the rest of the
// application keeps working without credentials.
package mailer

import (
	"fmt"
	"log/slog"
	"strings"

	gomail "gopkg.in/gomail.v2"
)

// sender abstracts gomail's dialer for tests.
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer delivers password reset links and team notifications.
type Mailer struct {
	sender sender
	from   string
	logger *slog.Logger
}

// New builds a Mailer. An empty host returns an unconfigured mailer whose
// send methods log and return nil.
func New(host string, port int, username, password, from string, logger *slog.Logger) *Mailer {
	m := &Mailer{from: from, logger: logger}
	if host == "" {
		return m
	}
	m.sender = gomail.NewDialer(host, port, username, password)
	return m
}

// Configured reports whether the mailer can actually deliver mail.
func (m *Mailer) Configured() bool {
	return m.sender != nil
}

// SendPasswordReset emails a reset link built from the frontend base URL
// and the plaintext token.
func (m *Mailer) SendPasswordReset(to, frontendBaseURL, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(frontendBaseURL, "/"), token)
	body := fmt.Sprintf(
		"Hello,\r\n\r\n"+
			"A password reset was requested for your account. Use the link below to set a new password:\r\n\r\n"+
			"%s\r\n\r\n"+
			"The link expires in one hour. If you did not request this, you can ignore this email.\r\n",
		link,
	)
	return m.send([]string{to}, "Password Reset Request", body)
}

// SendTeamNotification mails every team address with a status or update
// notice about a client record.
func (m *Mailer) SendTeamNotification(recipients []string, subject, body string) error {
	if len(recipients) == 0 {
		return nil
	}
	return m.send(recipients, subject, body)
}

func (m *Mailer) send(to []string, subject, body string) error {
	if m.sender == nil {
		m.logger.Warn("smtp not configured, skipping email",
			slog.String("subject", subject),
			slog.Int("recipients", len(to)))
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("send email %q: %w", subject, err)
	}

	m.logger.Info("email sent",
		slog.String("subject", subject),
		slog.Int("recipients", len(to)))
	return nil
}
