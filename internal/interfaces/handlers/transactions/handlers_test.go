package transactions

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http/httptest"
	"testing"
	"time"

	"wealthdesk-backend/internal/application/auth"
	importsvc "wealthdesk-backend/internal/application/imports"
	txsvc "wealthdesk-backend/internal/application/transactions"
	"wealthdesk-backend/internal/domain"
	"wealthdesk-backend/internal/middleware"
	"wealthdesk-backend/internal/pkg/constants"
	"wealthdesk-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

func setupTxTest(t *testing.T, sess *auth.Session) (*fiber.App, *gorm.DB) {
	db := testutil.NewDB(t)
	h := &Handlers{Service: txsvc.NewService(db), Imports: &importsvc.Service{DB: db}}
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		middleware.SetSession(c, sess)
		return c.Next()
	})
	app.Get("/api/transactions", middleware.AuthorizePermission(constants.ViewTransactions), h.List)
	app.Post("/api/transactions", middleware.AuthorizePermission(constants.ManageTransactions), h.Create)
	app.Post("/api/transactions/bulk-upload", middleware.AuthorizePermission(constants.ImportData), h.BulkUpload)
	return app, db
}

func listIDs(t *testing.T, app *fiber.App, query string) (int, []string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", "/api/transactions"+query, nil))
	require.NoError(t, err)
	var body struct {
		Data []struct {
			ClientID string `json:"clientId"`
		} `json:"data"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	ids := make([]string, 0, len(body.Data))
	for _, d := range body.Data {
		ids = append(ids, d.ClientID)
	}
	return resp.StatusCode, ids
}

func TestList_ScopedToClient(t *testing.T) {
	sess := &auth.Session{UserID: uuid.New(), Role: constants.RoleClient}
	app, db := setupTxTest(t, sess)
	me := testutil.Client(t, db, "C1", "Asha", nil)
	other := testutil.Client(t, db, "C2", "Ravi", nil)
	sess.ClientID = &me.ClientID
	day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	testutil.Tx(t, db, me.ClientID, domain.IndicatorInvestment, 1000, day)
	testutil.Tx(t, db, other.ClientID, domain.IndicatorInvestment, 2000, day)

	code, ids := listIDs(t, app, "")
	require.Equal(t, 200, code)
	assert.Equal(t, []string{me.ClientID.String()}, ids)

	code, ids = listIDs(t, app, "?clientId="+other.ClientID.String())
	require.Equal(t, 200, code)
	assert.Empty(t, ids)

	code, _ = listIDs(t, app, "?from=yesterday")
	assert.Equal(t, 400, code)

	resp, err := app.Test(httptest.NewRequest("POST", "/api/transactions", nil))
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode)
}

func TestCreateAndBulkUpload_Admin(t *testing.T) {
	sess := &auth.Session{UserID: uuid.New(), Role: constants.RoleAdmin}
	app, db := setupTxTest(t, sess)
	c := testutil.Client(t, db, "C1", "Asha", nil)
	pan := "ABCDE1234F"
	require.NoError(t, db.Model(&c).Update("pan_no", pan).Error)

	body, _ := json.Marshal(map[string]interface{}{"clientId": c.ClientID.String(), "type": "investment", "amount": 5000, "transactionDate": "2024-05-01"})
	post := func() int {
		req := httptest.NewRequest("POST", "/api/transactions", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}
	assert.Equal(t, 201, post())
	assert.Equal(t, 409, post())

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Client PAN No", "Payout Date", "Amount"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{pan, "2024-05-31", 250}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"ZZZZZ9999Z", "2024-05-31", 100}))
	xlsx, err := f.WriteToBuffer()
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	fw, err := w.CreateFormFile("file", "payouts.xlsx")
	require.NoError(t, err)
	_, _ = fw.Write(xlsx.Bytes())
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/api/transactions/bulk-upload?type=payout", buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	var out struct {
		Message string `json:"message"`
		Data    struct {
			SuccessCount int `json:"successCount"`
			ErrorCount   int `json:"errorCount"`
			Errors       []struct {
				Row int `json:"row"`
			} `json:"errors"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "Import completed with errors", out.Message)
	assert.Equal(t, 1, out.Data.SuccessCount)
	require.Len(t, out.Data.Errors, 1)
	assert.Equal(t, 2, out.Data.Errors[0].Row)
}
