package emails

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"
)

// SMTPClient delivers mail through a plain SMTP relay with PLAIN auth.
type SMTPClient struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string

	// SendMail defaults to smtp.SendMail.
	SendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTP returns a Sender backed by an SMTP relay.
func NewSMTP(c *SMTPClient, loginURL string, timeout time.Duration) Sender {
	return composer{t: c, timeout: timeout, loginURL: loginURL}
}

func (c *SMTPClient) deliver(ctx context.Context, m message) error {
	send := c.SendMail
	if send == nil {
		send = smtp.SendMail
	}
	var auth smtp.Auth
	if c.Username != "" {
		auth = smtp.PlainAuth("", c.Username, c.Password, c.Host)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: Wealthdesk <%s>\r\n", c.From)
	fmt.Fprintf(&b, "To: %s\r\n", m.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", m.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(m.HTML)

	// net/smtp has no context support; run it aside and honour the deadline.
	done := make(chan error, 1)
	go func() {
		done <- send(c.Host+":"+c.Port, auth, c.From, []string{m.To}, []byte(b.String()))
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
