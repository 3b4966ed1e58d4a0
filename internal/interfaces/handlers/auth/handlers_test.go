package auth

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	authsvc "wealthdesk-backend/internal/application/auth"
	"wealthdesk-backend/internal/domain"
	"wealthdesk-backend/internal/middleware"
	"wealthdesk-backend/internal/pkg/constants"
	"wealthdesk-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthApp(t *testing.T) (*fiber.App, *authsvc.Service) {
	db := testutil.NewDB(t)
	rdb, _ := testutil.NewRedis(t)
	svc := &authsvc.Service{DB: db, Rdb: rdb, Issuer: authsvc.NewIssuer("test-secret", time.Hour)}
	h := &Handlers{Service: svc}

	app := fiber.New()
	g := app.Group("/api/auth")
	g.Post("/login", h.Login)
	g.Post("/signup", h.Signup)
	g.Post("/forgot-password", h.ForgotPassword)
	g.Post("/reset-password", h.ResetPassword)
	g.Get("/session", middleware.RequireAuth(svc), h.Session)
	g.Post("/logout", middleware.RequireAuth(svc), h.Logout)
	return app, svc
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}, token string) (int, map[string]interface{}) {
	t.Helper()
	b, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	var out map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func getSession(t *testing.T, app *fiber.App, token string) int {
	t.Helper()
	req := httptest.NewRequest("GET", "/api/auth/session", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestLogin_EmptyBody(t *testing.T) {
	app, _ := setupAuthApp(t)
	req := httptest.NewRequest("POST", "/api/auth/login", nil)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestLogin_SessionLogout(t *testing.T) {
	app, svc := setupAuthApp(t)
	hash, err := authsvc.HashPassword("Secret#123")
	require.NoError(t, err)
	role := testutil.Role(t, svc.DB, constants.Admin)
	require.NoError(t, svc.DB.Create(&domain.User{UserName: "admin", PasswordHash: hash, RoleID: role.RoleID, IsActive: true}).Error)

	code, _ := postJSON(t, app, "/api/auth/login", map[string]string{"userName": "admin", "password": "wrong"}, "")
	assert.Equal(t, 401, code)

	code, body := postJSON(t, app, "/api/auth/login", map[string]string{"userName": "ADMIN", "password": "Secret#123"}, "")
	require.Equal(t, 200, code)
	data := body["data"].(map[string]interface{})
	token := data["token"].(string)
	assert.Equal(t, "Admin", data["session"].(map[string]interface{})["role"])

	assert.Equal(t, 401, getSession(t, app, ""))
	assert.Equal(t, 200, getSession(t, app, token))

	code, _ = postJSON(t, app, "/api/auth/logout", nil, token)
	assert.Equal(t, 200, code)
	assert.Equal(t, 401, getSession(t, app, token))
}

func TestSignup(t *testing.T) {
	app, _ := setupAuthApp(t)
	req := map[string]string{
		"name":     "Asha Rao",
		"email":    "asha@example.com",
		"mobile":   "9876543210",
		"password": "Secret#123",
	}
	code, body := postJSON(t, app, "/api/auth/signup", req, "")
	require.Equal(t, 201, code)
	token := body["data"].(map[string]interface{})["token"].(string)
	assert.Equal(t, 200, getSession(t, app, token))

	code, _ = postJSON(t, app, "/api/auth/signup", req, "")
	assert.Equal(t, 409, code)

	req["email"] = "not-an-email"
	code, body = postJSON(t, app, "/api/auth/signup", req, "")
	assert.Equal(t, 400, code)
	details := body["error"].(map[string]interface{})["details"].([]interface{})
	assert.Equal(t, "email", details[0].(map[string]interface{})["field"])
}

func TestResetPassword_InvalidToken(t *testing.T) {
	app, _ := setupAuthApp(t)
	code, _ := postJSON(t, app, "/api/auth/reset-password", map[string]string{"token": "nope", "password": "Secret#123"}, "")
	assert.Equal(t, 400, code)

	code, _ = postJSON(t, app, "/api/auth/forgot-password", map[string]string{"userName": "ghost"}, "")
	assert.Equal(t, 200, code)
}
