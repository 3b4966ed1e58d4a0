package emails

import (
	"fmt"
	"html"
	"time"
)

const (
	themePrimary  = "#0B3D91"
	themeTextMain = "#1F2937"
	themeBgBody   = "#F3F4F6"
)

// EmailLayout wraps content in the shared HTML shell.
func EmailLayout(contentHTML string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Wealthdesk</title>
  <style>
    body { margin: 0; padding: 0; background-color: %s; font-family: -apple-system, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; color: %s; }
    .card { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; padding: 40px 48px; }
    .card h1 { font-size: 22px; margin-top: 0; }
    .card p { font-size: 15px; line-height: 1.6; }
    .button { display: inline-block; background-color: %s; color: #FFFFFF !important; padding: 12px 28px; border-radius: 6px; text-decoration: none; font-weight: 600; }
    .creds { background: #F9FAFB; border-radius: 6px; padding: 12px 16px; font-family: monospace; }
    .footer { text-align: center; font-size: 12px; color: #6B7280; margin-bottom: 40px; }
  </style>
</head>
<body>
  <div class="card">%s</div>
  <p class="footer">&copy; %d Wealthdesk. This is an automated message, please do not reply.</p>
</body>
</html>`, themeBgBody, themeTextMain, themePrimary, contentHTML, time.Now().Year())
}

// EscapeHTML escapes HTML specials for safe interpolation.
func EscapeHTML(s string) string {
	return html.EscapeString(s)
}

func welcomeContent(m WelcomeEmail) string {
	name := m.Name
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf(`
    <h1>Welcome to Wealthdesk, %s!</h1>
    <p>Your investor account has been created. You can sign in with the credentials below and change your password from your profile.</p>
    <p class="creds">Username: %s<br>Password: %s</p>
    <p><a href="%s" class="button">Sign in</a></p>
`, EscapeHTML(name), EscapeHTML(m.UserName), EscapeHTML(m.Password), EscapeHTML(m.LoginURL))
}

func resetContent(name, link string) string {
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf(`
    <h1>Password reset requested</h1>
    <p>Hi %s,</p>
    <p>We received a request to reset your password. The link below is valid for 30 minutes.</p>
    <p><a href="%s" class="button">Reset password</a></p>
    <p>If you did not ask for this, you can ignore this email.</p>
`, EscapeHTML(name), EscapeHTML(link))
}

func requestStatusContent(name, kind, status string) string {
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf(`
    <h1>Your %s request was %s</h1>
    <p>Hi %s,</p>
    <p>Your %s request has been reviewed and marked <strong>%s</strong>. Sign in to your dashboard for details.</p>
`, EscapeHTML(kind), EscapeHTML(status), EscapeHTML(name), EscapeHTML(kind), EscapeHTML(status))
}
