package smtp

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/smtp"
	"strings"

	"github.com/a-bjn/sudexpert-storefront/internal/notifier/sender"
)

// Config holds the SMTP relay settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Sender delivers contact emails through an SMTP relay.
type Sender struct {
	cfg    Config
	logger *slog.Logger

	// sendMail is swapped out in tests; smtp.SendMail dials a real relay.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSender creates an SMTP-backed sender.
func NewSender(cfg Config, logger *slog.Logger) *Sender {
	return &Sender{
		cfg:      cfg,
		logger:   logger,
		sendMail: smtp.SendMail,
	}
}

// Name returns the name of this sender.
func (s *Sender) Name() string {
	return "smtp"
}

// Send delivers the email as a multipart/alternative message so clients can
// pick the HTML or the plain-text rendering.
func (s *Sender) Send(ctx context.Context, email *sender.Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	msg := buildMessage(s.cfg.From, email)

	if err := s.sendMail(addr, auth, s.cfg.From, email.To, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	s.logger.InfoContext(ctx, "email sent",
		slog.String("to", strings.Join(email.To, ",")),
		slog.String("subject", email.Subject),
	)

	return nil
}

const boundary = "sudexpert-alt"

func buildMessage(from string, email *sender.Email) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(email.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", email.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
	b.WriteString("\r\n")

	// Plain text part first: the last part is the preferred rendering.
	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(email.TextBody)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	b.WriteString(email.HTMLBody)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", boundary)

	return []byte(b.String())
}
