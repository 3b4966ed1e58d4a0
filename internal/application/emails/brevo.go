package emails

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const brevoAPI = "https://api.brevo.com/v3/smtp/email"

// BrevoSendRequest matches the Brevo API v3 transactional email body.
type BrevoSendRequest struct {
	Sender      BrevoAddress   `json:"sender"`
	To          []BrevoAddress `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
}

type BrevoAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// BrevoClient sends emails via the Brevo (Sendinblue) API.
type BrevoClient struct {
	APIKey   string
	MailFrom string
	Endpoint string // defaults to the public API; overridden in tests
	Client   *http.Client
}

// NewBrevo returns a Sender that posts to Brevo with the given per-send timeout.
func NewBrevo(apiKey, mailFrom, loginURL string, timeout time.Duration) Sender {
	return composer{
		t:        &BrevoClient{APIKey: apiKey, MailFrom: mailFrom},
		timeout:  timeout,
		loginURL: loginURL,
	}
}

func (c *BrevoClient) deliver(ctx context.Context, m message) error {
	body := BrevoSendRequest{
		Sender:      BrevoAddress{Email: c.MailFrom, Name: "Wealthdesk"},
		To:          []BrevoAddress{{Email: m.To}},
		Subject:     m.Subject,
		HTMLContent: m.HTML,
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return err
	}
	endpoint := c.Endpoint
	if endpoint == "" {
		endpoint = brevoAPI
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("brevo send failed: status %d", resp.StatusCode)
	}
	return nil
}
