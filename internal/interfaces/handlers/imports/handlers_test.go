package imports

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"wealthdesk-backend/internal/application/auth"
	importsvc "wealthdesk-backend/internal/application/imports"
	"wealthdesk-backend/internal/domain"
	"wealthdesk-backend/internal/middleware"
	"wealthdesk-backend/internal/pkg/constants"
	"wealthdesk-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type reportBody struct {
	Message string `json:"message"`
	Data    struct {
		SuccessCount int `json:"successCount"`
		UpdatedCount int `json:"updatedCount"`
		SkippedCount int `json:"skippedCount"`
		ErrorCount   int `json:"errorCount"`
		Errors       []struct {
			Row    int    `json:"row"`
			Reason string `json:"reason"`
		} `json:"errors"`
		EmailResults []struct {
			Email string `json:"email"`
			Sent  bool   `json:"sent"`
			Error string `json:"error"`
		} `json:"emailResults"`
	} `json:"data"`
}

func setupImportApp(t *testing.T) (*fiber.App, *gorm.DB) {
	db := testutil.NewDB(t)
	h := &Handlers{Service: &importsvc.Service{DB: db}}
	admin := &auth.Session{UserID: uuid.New(), Role: constants.RoleAdmin}

	app := fiber.New()
	sync := app.Group("/api/sync", middleware.SyncToken("sync-secret"))
	sync.Post("/clients", h.SyncClients)
	sync.Post("/transactions", h.SyncTransactions)

	authed := app.Group("/api", func(c *fiber.Ctx) error {
		middleware.SetSession(c, admin)
		return c.Next()
	})
	authed.Post("/clients/bulk-upload", middleware.AuthorizePermission(constants.ImportData), h.ClientsBulkUpload)
	authed.Get("/imports/batches", middleware.AuthorizePermission(constants.ImportData), h.ListBatches)
	return app, db
}

func syncPost(t *testing.T, app *fiber.App, path, token string, records interface{}) (int, reportBody) {
	t.Helper()
	b, _ := json.Marshal(records)
	req := httptest.NewRequest("POST", path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	var out reportBody
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestSync_TokenAndUpsert(t *testing.T) {
	app, db := setupImportApp(t)
	recs := []map[string]interface{}{
		{"clientCode": "S1", "name": "Asha Rao", "panNo": "ABCDE1234F"},
		{"clientCode": "S2", "name": "Ravi"},
	}

	code, _ := syncPost(t, app, "/api/sync/clients", "wrong", recs)
	assert.Equal(t, 401, code)

	code, out := syncPost(t, app, "/api/sync/clients", "sync-secret", recs)
	require.Equal(t, 200, code)
	assert.Equal(t, 2, out.Data.SuccessCount)

	recs[1]["city"] = "Pune"
	code, out = syncPost(t, app, "/api/sync/clients", "sync-secret", recs)
	require.Equal(t, 200, code)
	assert.Equal(t, 2, out.Data.UpdatedCount)
	var s2 domain.Client
	require.NoError(t, db.First(&s2, "code = ?", "S2").Error)
	require.NotNil(t, s2.City)
	assert.Equal(t, "Pune", *s2.City)

	txs := []map[string]interface{}{
		{"clientCode": "S1", "type": "investment", "transactionDate": "2024-05-01", "amount": 1000},
		{"clientCode": "NOPE", "type": "investment", "transactionDate": "2024-05-01", "amount": 1000},
	}
	code, out = syncPost(t, app, "/api/sync/transactions", "sync-secret", txs)
	require.Equal(t, 200, code)
	assert.Equal(t, 1, out.Data.SuccessCount)
	assert.Equal(t, 1, out.Data.ErrorCount)
	code, out = syncPost(t, app, "/api/sync/transactions", "sync-secret", txs[:1])
	require.Equal(t, 200, code)
	assert.Equal(t, 1, out.Data.SkippedCount)

	req := httptest.NewRequest("POST", "/api/sync/clients", bytes.NewReader([]byte(`{"not":"an array"}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer sync-secret")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestClientsBulkUpload_PartialFailure(t *testing.T) {
	app, db := setupImportApp(t)
	csv := "client_code,name,mobile,email\n" +
		"C1,Asha Rao,9876543210,asha@example.com\n" +
		"C2,Ravi Kumar,9876543211,ravi@example.com\n" +
		"C3,,9876543212,c3@example.com\n" +
		"C4,Meera,9876543213,meera@example.com\n" +
		"C5,Dev,9876543214,dev@example.com\n"

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	fw, err := w.CreateFormFile("file", "clients.csv")
	require.NoError(t, err)
	_, _ = fw.Write([]byte(csv))
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/api/clients/bulk-upload", buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	var out reportBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, 4, out.Data.SuccessCount)
	require.Len(t, out.Data.Errors, 1)
	assert.Equal(t, 3, out.Data.Errors[0].Row)
	require.Len(t, out.Data.EmailResults, 4)
	assert.False(t, out.Data.EmailResults[0].Sent)
	assert.Equal(t, "email delivery not configured", out.Data.EmailResults[0].Error)

	var n int64
	require.NoError(t, db.Model(&domain.Client{}).Count(&n).Error)
	assert.EqualValues(t, 4, n)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/imports/batches", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}
