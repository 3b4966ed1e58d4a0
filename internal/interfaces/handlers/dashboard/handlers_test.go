package dashboard

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	authsvc "wealthdesk-backend/internal/application/auth"
	dashsvc "wealthdesk-backend/internal/application/dashboard"
	"wealthdesk-backend/internal/domain"
	"wealthdesk-backend/internal/middleware"
	"wealthdesk-backend/internal/pkg/constants"
	"wealthdesk-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	app    *fiber.App
	db     *gorm.DB
	issuer *authsvc.Issuer
}

func setup(t *testing.T, now time.Time) fixture {
	db := testutil.NewDB(t)
	issuer := authsvc.NewIssuer("test-secret", time.Hour)
	authn := &authsvc.Service{DB: db, Issuer: issuer}
	h := &Handlers{Service: &dashsvc.Service{DB: db, CommissionRate: decimal.NewFromFloat(0.10), Now: func() time.Time { return now }}}

	app := fiber.New()
	g := app.Group("/api/dashboard", middleware.RequireAuth(authn), middleware.AuthorizePermission(constants.ViewDashboard))
	g.Get("/stats", h.Stats)
	g.Get("/monthly-trend", h.MonthlyTrend)
	g.Get("/reconciliation", middleware.AuthorizePermission(constants.ViewReconciliation), h.Reconciliation)
	return fixture{app: app, db: db, issuer: issuer}
}

func (f fixture) token(t *testing.T, u domain.User, roleName string) string {
	t.Helper()
	tok, _, err := f.issuer.Issue(u, testutil.Role(t, f.db, roleName))
	require.NoError(t, err)
	return tok
}

func (f fixture) get(t *testing.T, path, token string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	var body map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp.StatusCode, body
}

func TestStats_EndToEnd(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	f := setup(t, now)

	leader := testutil.Client(t, f.db, "L1", "Leader", nil)
	member := testutil.Client(t, f.db, "C1", "Member", &leader.ClientID)
	outsider := testutil.Client(t, f.db, "X1", "Outsider", nil)
	testutil.Tx(t, f.db, member.ClientID, domain.IndicatorInvestment, 50000, now.AddDate(0, 0, -3))
	testutil.Tx(t, f.db, member.ClientID, domain.IndicatorPayout, 2000, now.AddDate(0, 0, -1))
	testutil.Tx(t, f.db, outsider.ClientID, domain.IndicatorPayout, 7000, now)

	leaderUser := testutil.User(t, f.db, "leader", constants.Leader, &leader.ClientID)
	memberUser := testutil.User(t, f.db, "member", constants.Client, &member.ClientID)

	code, _ := f.get(t, "/api/dashboard/stats", "")
	assert.Equal(t, 401, code)
	code, _ = f.get(t, "/api/dashboard/stats", "garbage")
	assert.Equal(t, 401, code)

	code, body := f.get(t, "/api/dashboard/stats", f.token(t, leaderUser, constants.Leader))
	require.Equal(t, 200, code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, 50000.0, data["teamInvestments"])
	assert.Equal(t, 200.0, data["commission"])

	memberToken := f.token(t, memberUser, constants.Client)
	code, body = f.get(t, "/api/dashboard/stats", memberToken)
	require.Equal(t, 200, code)
	data = body["data"].(map[string]interface{})
	assert.Equal(t, 50000.0, data["totalInvestment"])
	assert.Equal(t, 2000.0, data["totalPayout"])

	code, _ = f.get(t, "/api/dashboard/reconciliation", memberToken)
	assert.Equal(t, 403, code)

	code, body = f.get(t, "/api/dashboard/monthly-trend?months=3", memberToken)
	require.Equal(t, 200, code)
	assert.Len(t, body["data"], 3)
	code, _ = f.get(t, "/api/dashboard/monthly-trend?months=zero", memberToken)
	assert.Equal(t, 400, code)
}
