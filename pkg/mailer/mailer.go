package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/origenhr/advance-api/pkg/config"
)

// Message is a plain-text outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers messages. Abstracted so services can be tested without a relay.
type Sender interface {
	Send(msg Message) error
}

// SMTPSender delivers mail through a configured SMTP relay.
type SMTPSender struct {
	addr string
	auth smtp.Auth
	from string
}

// NewSMTPSender builds a sender from config. When no username is configured
// the relay is assumed to accept unauthenticated submissions (dev mailhog).
func NewSMTPSender(cfg config.SMTPConfig, from string) *SMTPSender {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPSender{
		addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		auth: auth,
		from: from,
	}
}

// Send delivers a single message.
func (s *SMTPSender) Send(msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("mail requires a recipient")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(msg.Body)

	if err := smtp.SendMail(s.addr, s.auth, s.from, []string{msg.To}, []byte(b.String())); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(msg Message) error

// Send implements Sender.
func (f SenderFunc) Send(msg Message) error {
	return f(msg)
}
