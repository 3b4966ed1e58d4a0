package emails

import (
	"context"
	"time"

	"wealthdesk-backend/internal/metrics"
)

// WelcomeEmail carries the credentials generated for a new client login.
type WelcomeEmail struct {
	To       string
	Name     string
	UserName string
	Password string
	LoginURL string
}

// Sender sends transactional emails. A nil Sender means delivery is not configured.
type Sender interface {
	SendWelcome(ctx context.Context, msg WelcomeEmail) error
	SendPasswordReset(ctx context.Context, toEmail, name, resetLink string) error
	SendRequestStatus(ctx context.Context, toEmail, name, requestKind, status string) error
}

// message is one rendered email handed to a transport.
type message struct {
	To       string
	Subject  string
	HTML     string
	template string
}

// transport delivers a rendered message.
type transport interface {
	deliver(ctx context.Context, m message) error
}

// composer renders the templates and hands them to a transport, so every
// transport shares the same content, timeout and metrics.
type composer struct {
	t        transport
	timeout  time.Duration
	loginURL string
}

func (c composer) send(ctx context.Context, m message) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	err := c.t.deliver(ctx, m)
	outcome := "sent"
	if err != nil {
		outcome = "failed"
	}
	metrics.EmailsSentTotal.WithLabelValues(m.template, outcome).Inc()
	return err
}

func (c composer) SendWelcome(ctx context.Context, msg WelcomeEmail) error {
	if msg.LoginURL == "" {
		msg.LoginURL = c.loginURL
	}
	return c.send(ctx, message{
		To:       msg.To,
		Subject:  "Welcome to Wealthdesk",
		HTML:     EmailLayout(welcomeContent(msg)),
		template: "welcome",
	})
}

func (c composer) SendPasswordReset(ctx context.Context, toEmail, name, resetLink string) error {
	return c.send(ctx, message{
		To:       toEmail,
		Subject:  "Reset your Wealthdesk password",
		HTML:     EmailLayout(resetContent(name, resetLink)),
		template: "password_reset",
	})
}

func (c composer) SendRequestStatus(ctx context.Context, toEmail, name, requestKind, status string) error {
	return c.send(ctx, message{
		To:       toEmail,
		Subject:  "Your " + requestKind + " request was " + status,
		HTML:     EmailLayout(requestStatusContent(name, requestKind, status)),
		template: "request_status",
	})
}
