package master

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"wealthdesk-backend/internal/application/auth"
	mastersvc "wealthdesk-backend/internal/application/master"
	"wealthdesk-backend/internal/middleware"
	"wealthdesk-backend/internal/pkg/constants"
	"wealthdesk-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupMasterApp(t *testing.T, sess *auth.Session) (*fiber.App, *gorm.DB) {
	db := testutil.NewDB(t)
	h := &Handlers{Service: mastersvc.NewService(db)}
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		middleware.SetSession(c, sess)
		return c.Next()
	})
	g := app.Group("/api/mst")
	g.Get("/clients", middleware.AuthorizePermission(constants.ViewClients), h.ListClients)
	g.Get("/clients/:id", middleware.AuthorizePermission(constants.ViewClients), h.GetClient)
	g.Post("/clients", middleware.AuthorizePermission(constants.ManageClients), h.CreateClient)
	g.Get("/branches", middleware.AuthorizePermission(constants.ManageMasters), h.ListBranches)
	g.Post("/branches", middleware.AuthorizePermission(constants.ManageMasters), h.CreateBranch)
	g.Delete("/branches/:id", middleware.AuthorizePermission(constants.ManageMasters), h.DeleteBranch)
	return app, db
}

type envelope struct {
	Status   string                 `json:"status"`
	Data     json.RawMessage        `json:"data"`
	Metadata map[string]interface{} `json:"metadata"`
}

func do(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	var req = httptest.NewRequest(method, path, nil)
	if body != nil {
		b, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	var env envelope
	_ = json.NewDecoder(resp.Body).Decode(&env)
	return resp.StatusCode, env
}

func TestListClients_LeaderSeesTeamWithPaging(t *testing.T) {
	sess := &auth.Session{UserID: uuid.New(), Role: constants.RoleLeader}
	app, db := setupMasterApp(t, sess)

	leader := testutil.Client(t, db, "L1", "Leader", nil)
	leaderID := leader.ClientID
	sess.ClientID = &leaderID
	testutil.Client(t, db, "M1", "Member One", &leaderID)
	testutil.Client(t, db, "M2", "Member Two", &leaderID)
	outsider := testutil.Client(t, db, "X1", "Outsider", nil)

	code, env := do(t, app, "GET", "/api/mst/clients?page=1&pageSize=2", nil)
	require.Equal(t, 200, code)
	var clients []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &clients))
	assert.Len(t, clients, 2)
	assert.EqualValues(t, 3, env.Metadata["total"])
	assert.EqualValues(t, 2, env.Metadata["totalPages"])

	code, _ = do(t, app, "GET", "/api/mst/clients/"+outsider.ClientID.String(), nil)
	assert.Equal(t, 404, code)
	code, _ = do(t, app, "GET", "/api/mst/clients/"+leaderID.String(), nil)
	assert.Equal(t, 200, code)
	code, _ = do(t, app, "GET", "/api/mst/clients/not-a-uuid", nil)
	assert.Equal(t, 400, code)

	code, _ = do(t, app, "POST", "/api/mst/clients", map[string]string{"code": "N1", "name": "New"})
	assert.Equal(t, 403, code)
	code, _ = do(t, app, "GET", "/api/mst/branches", nil)
	assert.Equal(t, 403, code)
}

func TestMasters_AdminWrites(t *testing.T) {
	sess := &auth.Session{UserID: uuid.New(), Role: constants.RoleAdmin}
	app, _ := setupMasterApp(t, sess)

	code, env := do(t, app, "POST", "/api/mst/branches", map[string]string{"name": "Pune", "pincode": "411001"})
	require.Equal(t, 201, code)
	var branch struct {
		BranchID string `json:"branchId"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &branch))

	code, _ = do(t, app, "POST", "/api/mst/branches", map[string]string{"name": "pune"})
	assert.Equal(t, 409, code)

	code, _ = do(t, app, "POST", "/api/mst/clients", map[string]string{"code": "C1", "name": "Asha", "branchId": branch.BranchID, "mobile": "12"})
	assert.Equal(t, 400, code)
	code, _ = do(t, app, "POST", "/api/mst/clients", map[string]string{"code": "C1", "name": "Asha", "branchId": branch.BranchID})
	assert.Equal(t, 201, code)

	code, _ = do(t, app, "DELETE", "/api/mst/branches/"+branch.BranchID, nil)
	assert.Equal(t, 409, code, "branch still has clients")

	code, env = do(t, app, "GET", "/api/mst/clients?search=ash", nil)
	require.Equal(t, 200, code)
	var clients []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &clients))
	assert.Len(t, clients, 1)
}
