// Package email implements the notification sender over plain SMTP.
package email

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"time"

	"github.com/dftlabs-home/oyoagro-api/internal/config"
	"github.com/dftlabs-home/oyoagro-api/internal/models"
)

// Mailer sends plain-text account notifications via SMTP. With Enabled false
// it logs what it would have sent and succeeds, which keeps development
// environments mail-free.
type Mailer struct {
	cfg    *config.EmailConfig
	logger *slog.Logger
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewMailer(cfg *config.EmailConfig, logger *slog.Logger) *Mailer {
	return &Mailer{cfg: cfg, logger: logger, send: smtp.SendMail}
}

func (m *Mailer) SendAccountLocked(user *models.UserAccount, reason string, lockedAt time.Time) error {
	body := fmt.Sprintf(
		"Hello %s,\n\nYour account has been locked: %s.\nLocked at: %s\n\nContact your administrator to restore access.\n",
		user.Username, reason, lockedAt.Format(time.RFC1123),
	)
	return m.deliver(user.Email, "Account Locked", body)
}

func (m *Mailer) SendAccountUnlocked(user *models.UserAccount) error {
	body := fmt.Sprintf(
		"Hello %s,\n\nYour account has been unlocked by an administrator. You can log in again.\n",
		user.Username,
	)
	return m.deliver(user.Email, "Account Unlocked", body)
}

func (m *Mailer) SendPasswordReset(user *models.UserAccount, resetToken string, expiresAt time.Time) error {
	link := resetToken
	if m.cfg.ResetURL != "" {
		link = fmt.Sprintf("%s?token=%s", m.cfg.ResetURL, resetToken)
	}
	body := fmt.Sprintf(
		"Hello %s,\n\nA password reset was requested for your account.\nReset link: %s\nThis link expires at %s and can be used once.\n\nIf you did not request this, you can ignore this message.\n",
		user.Username, link, expiresAt.Format(time.RFC1123),
	)
	return m.deliver(user.Email, "Password Reset", body)
}

func (m *Mailer) SendWelcome(user *models.UserAccount, tempPassword string) error {
	body := fmt.Sprintf(
		"Hello %s,\n\nAn account has been created for you.\nUsername: %s\nTemporary password: %s\n\nPlease log in and change your password.\n",
		user.Username, user.Username, tempPassword,
	)
	return m.deliver(user.Email, "Welcome to the Agro Registry", body)
}

func (m *Mailer) deliver(to, subject, body string) error {
	if !m.cfg.Enabled {
		m.logger.Info("email disabled, skipping delivery", "to", to, "subject", subject)
		return nil
	}

	from := m.cfg.From
	headers := []string{
		fmt.Sprintf("From: %s <%s>", m.cfg.FromName, from),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="utf-8"`,
	}
	msg := strings.Join(headers, "\r\n") + "\r\n\r\n" + body

	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.SMTPHost)
	}

	if err := m.send(addr, auth, from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
