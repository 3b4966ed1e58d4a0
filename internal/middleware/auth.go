package middleware

import (
	"context"
	"strings"

	"wealthdesk-backend/internal/application/auth"
	"wealthdesk-backend/internal/metrics"
	"wealthdesk-backend/internal/pkg/apperrors"
	"wealthdesk-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const (
	sessionLocal      = "session"
	accessTokenHeader = "X-Access-Token"
)

// Authenticator resolves a bearer token into a session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Session, error)
}

// BearerToken reads "Authorization: Bearer <token>", falling back to the
// X-Access-Token header when Authorization is absent.
func BearerToken(c *fiber.Ctx) string {
	if h := strings.TrimSpace(c.Get(fiber.HeaderAuthorization)); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return ""
		}
		return strings.TrimSpace(token)
	}
	return strings.TrimSpace(c.Get(accessTokenHeader))
}

// RequireAuth verifies the request token and stores the session in Locals.
// Returns 401 with the standard error format when it is missing or invalid.
func RequireAuth(a Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := BearerToken(c)
		if token == "" {
			metrics.AuthFailuresTotal.WithLabelValues("unauthenticated").Inc()
			return response.FromError(c, auth.ErrMissingToken)
		}
		sess, err := a.Authenticate(c.UserContext(), token)
		if err != nil {
			if apperrors.IsKind(err, apperrors.KindAuthentication) {
				metrics.AuthFailuresTotal.WithLabelValues("unauthenticated").Inc()
			}
			return response.FromError(c, err)
		}
		c.Locals(sessionLocal, sess)
		return c.Next()
	}
}

// GetSession returns the authenticated session (nil if the route is public).
func GetSession(c *fiber.Ctx) *auth.Session {
	sess, _ := c.Locals(sessionLocal).(*auth.Session)
	return sess
}

// SetSession attaches sess to the request. Used by tests and sync routes.
func SetSession(c *fiber.Ctx, sess *auth.Session) {
	c.Locals(sessionLocal, sess)
}
