package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	healthsvc "wealthdesk-backend/internal/application/health"
	"wealthdesk-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func setupHealthApp(t *testing.T, db healthsvc.DBPinger) (*fiber.App, healthsvc.Recorder) {
	rdb, _ := testutil.NewRedis(t)
	h := &Handlers{Service: &healthsvc.Service{Rdb: rdb, DB: db, AdminKey: "admin-key", Service: "wealthdesk-api"}}
	app := fiber.New()
	app.Get("/health/json", h.JSON)
	app.Get("/health/errors", h.Errors)
	app.Get("/reset", h.Reset)
	return app, healthsvc.Recorder{Rdb: rdb}
}

func TestJSON(t *testing.T) {
	app, rec := setupHealthApp(t, pinger{})
	rec.Start(context.Background(), "GET", "/api/x", "127.0.0.1", time.Now())
	rec.Finish(context.Background(), 200, 5*time.Millisecond)

	resp, err := app.Test(httptest.NewRequest("GET", "/health/json", nil))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	var rep healthsvc.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rep))
	assert.Equal(t, "wealthdesk-api", rep.Service)
	assert.Equal(t, "ok", rep.Status)
	assert.Equal(t, 1, rep.Traffic.TotalRequests)

	down, _ := setupHealthApp(t, pinger{err: errors.New("down")})
	resp, err = down.Test(httptest.NewRequest("GET", "/health/json", nil))
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rep))
	assert.Equal(t, "error", rep.Dependencies["database"].Status)
	assert.NotEqual(t, "ok", rep.Status)
}

func TestErrorsAndReset(t *testing.T) {
	app, rec := setupHealthApp(t, pinger{})
	for i := 0; i < 3; i++ {
		rec.LogError(context.Background(), healthsvc.ErrorEntry{Time: time.Now(), Method: "GET", Path: "/boom", Status: 500, Message: "kaboom"})
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/health/errors?limit=2", nil))
	require.NoError(t, err)
	var entries []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	assert.Len(t, entries, 2)

	resp, err = app.Test(httptest.NewRequest("GET", "/reset?key=wrong", nil))
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/reset?key=admin-key", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/health/errors", nil))
	require.NoError(t, err)
	entries = nil
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	assert.Empty(t, entries)
}
