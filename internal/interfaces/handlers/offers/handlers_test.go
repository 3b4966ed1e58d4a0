package offers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"wealthdesk-backend/internal/application/auth"
	offersvc "wealthdesk-backend/internal/application/offers"
	"wealthdesk-backend/internal/middleware"
	"wealthdesk-backend/internal/pkg/constants"
	"wealthdesk-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOffers_AdminWritesClientReads(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	h := &Handlers{Service: &offersvc.Service{DB: testutil.NewDB(t), Now: func() time.Time { return now }}}
	sessions := map[string]*auth.Session{
		"admin":  {UserID: uuid.New(), Role: constants.RoleAdmin},
		"client": {UserID: uuid.New(), Role: constants.RoleClient},
	}
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		middleware.SetSession(c, sessions[c.Get("X-Who")])
		return c.Next()
	})
	app.Get("/api/offers", middleware.AuthorizePermission(constants.ViewOffers), h.List)
	app.Post("/api/offers", middleware.AuthorizePermission(constants.ManageOffers), h.Create)
	app.Delete("/api/offers/:id", middleware.AuthorizePermission(constants.ManageOffers), h.Delete)

	send := func(who, method, path string, body interface{}) (int, map[string]interface{}) {
		var req = httptest.NewRequest(method, path, nil)
		if body != nil {
			b, _ := json.Marshal(body)
			req = httptest.NewRequest(method, path, bytes.NewReader(b))
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("X-Who", who)
		resp, err := app.Test(req)
		require.NoError(t, err)
		var out map[string]interface{}
		_ = json.NewDecoder(resp.Body).Decode(&out)
		return resp.StatusCode, out
	}

	code, _ := send("client", "POST", "/api/offers", map[string]string{"title": "Nope"})
	assert.Equal(t, 403, code)

	code, body := send("admin", "POST", "/api/offers", map[string]string{"title": "Festive FD"})
	require.Equal(t, 201, code)
	id := body["data"].(map[string]interface{})["offerId"].(string)
	code, _ = send("admin", "POST", "/api/offers", map[string]string{"title": "Later", "validFrom": "2025-01-01"})
	require.Equal(t, 201, code)

	code, body = send("client", "GET", "/api/offers?all=true", nil)
	require.Equal(t, 200, code)
	assert.Len(t, body["data"], 1)
	code, body = send("admin", "GET", "/api/offers?all=true", nil)
	require.Equal(t, 200, code)
	assert.Len(t, body["data"], 2)

	code, _ = send("admin", "DELETE", "/api/offers/"+id, nil)
	assert.Equal(t, 200, code)
	code, _ = send("admin", "DELETE", "/api/offers/"+id, nil)
	assert.Equal(t, 404, code)
}
