// Package notifygw implements the notification gateways on top of SMTP.
package notifygw

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

// SMTPConfig holds the mail relay settings. An empty Host disables mail
// delivery.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// IsEnabled reports whether a mail relay is configured.
func (c SMTPConfig) IsEnabled() bool {
	return c.Host != "" && c.From != ""
}

type smtpGateway struct {
	cfg SMTPConfig
}

// NewSMTPEmailGateway returns an e-mail gateway delivering through the given
// relay, or a logging no-op gateway when no relay is configured.
func NewSMTPEmailGateway(cfg SMTPConfig) EmailGatewayFunc {
	if !cfg.IsEnabled() {
		slog.Info("no SMTP relay configured, outgoing mail is disabled")
		return func(recipients []string, subject, body string) {
			slog.Debug("discarding email", "subject", subject, "recipients", len(recipients))
		}
	}
	gw := &smtpGateway{cfg: cfg}
	return gw.composeAndSend
}

// EmailGatewayFunc adapts a function to the EmailGateway interface.
type EmailGatewayFunc func(recipients []string, subject, body string)

// ComposeAndSend implements notify.EmailGateway.
func (f EmailGatewayFunc) ComposeAndSend(recipients []string, subject, body string) {
	f(recipients, subject, body)
}

func (g *smtpGateway) composeAndSend(recipients []string, subject, body string) {
	if len(recipients) == 0 {
		return
	}
	addr := fmt.Sprintf("%s:%d", g.cfg.Host, g.cfg.Port)
	var auth smtp.Auth
	if g.cfg.Username != "" {
		auth = smtp.PlainAuth("", g.cfg.Username, g.cfg.Password, g.cfg.Host)
	}
	// Each recipient gets an individual mail so addresses never leak to
	// other subscribers.
	for _, to := range recipients {
		msg := buildMessage(g.cfg.From, to, subject, body)
		if err := smtp.SendMail(addr, auth, g.cfg.From, []string{to}, msg); err != nil {
			slog.Error("failed to send email", "to", to, "subject", subject, "error", err)
		}
	}
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
