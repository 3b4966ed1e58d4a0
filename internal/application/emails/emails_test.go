package emails

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrevo_SendWelcome(t *testing.T) {
	var got BrevoSendRequest
	var apiKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("api-key")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	s := composer{
		t:        &BrevoClient{APIKey: "k", MailFrom: "noreply@example.com", Endpoint: srv.URL},
		timeout:  time.Second,
		loginURL: "https://app.example.com/login",
	}
	err := s.SendWelcome(context.Background(), WelcomeEmail{
		To: "asha@example.com", Name: "Asha <b>", UserName: "asha@example.com", Password: "p@ss1234",
	})
	require.NoError(t, err)
	assert.Equal(t, "k", apiKey)
	require.Len(t, got.To, 1)
	assert.Equal(t, "asha@example.com", got.To[0].Email)
	assert.Equal(t, "Welcome to Wealthdesk", got.Subject)
	assert.Contains(t, got.HTMLContent, "Asha &lt;b&gt;")
	assert.Contains(t, got.HTMLContent, "https://app.example.com/login")
}

func TestBrevo_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := composer{t: &BrevoClient{APIKey: "bad", Endpoint: srv.URL}}
	err := s.SendPasswordReset(context.Background(), "a@b.com", "A", "https://x/reset?token=1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestSMTP_BuildsMessage(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg string
	c := &SMTPClient{
		Host: "smtp.example.com", Port: "587", Username: "u", Password: "p", From: "noreply@example.com",
		SendMail: func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, string(msg)
			return nil
		},
	}
	s := NewSMTP(c, "https://app.example.com", time.Second)
	require.NoError(t, s.SendRequestStatus(context.Background(), "c@example.com", "C", "withdrawal", "approved"))

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "noreply@example.com", gotFrom)
	assert.Equal(t, []string{"c@example.com"}, gotTo)
	assert.True(t, strings.Contains(gotMsg, "Subject: Your withdrawal request was approved\r\n"))
	assert.Contains(t, gotMsg, "Content-Type: text/html")
}

func TestSMTP_Timeout(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	c := &SMTPClient{
		Host: "h", Port: "25", From: "f@example.com",
		SendMail: func(string, smtp.Auth, string, []string, []byte) error {
			<-block
			return nil
		},
	}
	s := NewSMTP(c, "", 20*time.Millisecond)
	err := s.SendPasswordReset(context.Background(), "a@b.com", "", "l")
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
