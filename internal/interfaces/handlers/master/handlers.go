// Package master serves the admin-maintained reference data: roles, users,
// branches and clients.
package master

import (
	mastersvc "wealthdesk-backend/internal/application/master"
	"wealthdesk-backend/internal/middleware"
	"wealthdesk-backend/internal/pkg/pagination"
	"wealthdesk-backend/internal/pkg/params"
	"wealthdesk-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *mastersvc.Service
}

// GET /api/mst/roles
func (h *Handlers) ListRoles(c *fiber.Ctx) error {
	roles, err := h.Service.ListRoles(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Roles fetched successfully", roles, nil)
}

// GET /api/mst/roles/:id
func (h *Handlers) GetRole(c *fiber.Ctx) error {
	id, err := params.ID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	role, err := h.Service.GetRole(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Role fetched successfully", role, nil)
}

// POST /api/mst/roles
func (h *Handlers) CreateRole(c *fiber.Ctx) error {
	var in mastersvc.RoleInput
	if err := params.Body(c, &in); err != nil {
		return response.FromError(c, err)
	}
	role, err := h.Service.CreateRole(c.UserContext(), middleware.GetSession(c).Actor(), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Role created successfully", role, nil)
}

// PUT /api/mst/roles/:id
func (h *Handlers) UpdateRole(c *fiber.Ctx) error {
	id, err := params.ID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var in mastersvc.RoleInput
	if err := params.Body(c, &in); err != nil {
		return response.FromError(c, err)
	}
	role, err := h.Service.UpdateRole(c.UserContext(), middleware.GetSession(c).Actor(), id, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Role updated successfully", role, nil)
}

// DELETE /api/mst/roles/:id
func (h *Handlers) DeleteRole(c *fiber.Ctx) error {
	id, err := params.ID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.Service.DeleteRole(c.UserContext(), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Role deleted successfully", nil, nil)
}

// GET /api/mst/users
func (h *Handlers) ListUsers(c *fiber.Ctx) error {
	users, err := h.Service.ListUsers(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Users fetched successfully", users, nil)
}

// GET /api/mst/users/:id
func (h *Handlers) GetUser(c *fiber.Ctx) error {
	id, err := params.ID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	u, err := h.Service.GetUser(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "User fetched successfully", u, nil)
}

// POST /api/mst/users
func (h *Handlers) CreateUser(c *fiber.Ctx) error {
	var in mastersvc.UserInput
	if err := params.Body(c, &in); err != nil {
		return response.FromError(c, err)
	}
	u, err := h.Service.CreateUser(c.UserContext(), middleware.GetSession(c).Actor(), in)
	if err != nil {
		return response.FromError(c, err)
	}
	log.Info().Str("user_id", u.UserID.String()).Msg("master: user created")
	return response.SuccessCreated(c, "User created successfully", u, nil)
}

// PUT /api/mst/users/:id
func (h *Handlers) UpdateUser(c *fiber.Ctx) error {
	id, err := params.ID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var in mastersvc.UserInput
	if err := params.Body(c, &in); err != nil {
		return response.FromError(c, err)
	}
	u, err := h.Service.UpdateUser(c.UserContext(), middleware.GetSession(c).Actor(), id, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "User updated successfully", u, nil)
}

// DELETE /api/mst/users/:id
func (h *Handlers) DeleteUser(c *fiber.Ctx) error {
	id, err := params.ID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.Service.DeleteUser(c.UserContext(), middleware.GetSession(c).Actor(), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "User deleted successfully", nil, nil)
}

// GET /api/mst/branches
func (h *Handlers) ListBranches(c *fiber.Ctx) error {
	branches, err := h.Service.ListBranches(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Branches fetched successfully", branches, nil)
}

// GET /api/mst/branches/:id
func (h *Handlers) GetBranch(c *fiber.Ctx) error {
	id, err := params.ID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	b, err := h.Service.GetBranch(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Branch fetched successfully", b, nil)
}

// POST /api/mst/branches
func (h *Handlers) CreateBranch(c *fiber.Ctx) error {
	var in mastersvc.BranchInput
	if err := params.Body(c, &in); err != nil {
		return response.FromError(c, err)
	}
	b, err := h.Service.CreateBranch(c.UserContext(), middleware.GetSession(c).Actor(), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Branch created successfully", b, nil)
}

// PUT /api/mst/branches/:id
func (h *Handlers) UpdateBranch(c *fiber.Ctx) error {
	id, err := params.ID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var in mastersvc.BranchInput
	if err := params.Body(c, &in); err != nil {
		return response.FromError(c, err)
	}
	b, err := h.Service.UpdateBranch(c.UserContext(), middleware.GetSession(c).Actor(), id, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Branch updated successfully", b, nil)
}

// DELETE /api/mst/branches/:id
func (h *Handlers) DeleteBranch(c *fiber.Ctx) error {
	id, err := params.ID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.Service.DeleteBranch(c.UserContext(), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Branch deleted successfully", nil, nil)
}

// GET /api/mst/clients?search=&branchId=&referenceId=&active=&page=&pageSize=
func (h *Handlers) ListClients(c *fiber.Ctx) error {
	var f mastersvc.ClientFilter
	var err error
	f.Search = c.Query("search")
	if f.BranchID, err = params.OptionalID(c, "branchId"); err != nil {
		return response.FromError(c, err)
	}
	if f.ReferenceID, err = params.OptionalID(c, "referenceId"); err != nil {
		return response.FromError(c, err)
	}
	if f.Active, err = params.Bool(c, "active"); err != nil {
		return response.FromError(c, err)
	}
	page := pagination.Parse(c.Query("page"), c.Query("pageSize"))

	clients, meta, err := h.Service.ListClients(c.UserContext(), middleware.GetSession(c), f, page)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Clients fetched successfully", clients, meta)
}

// GET /api/mst/clients/:id
func (h *Handlers) GetClient(c *fiber.Ctx) error {
	id, err := params.ID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	client, err := h.Service.GetClient(c.UserContext(), middleware.GetSession(c), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Client fetched successfully", client, nil)
}

// POST /api/mst/clients
func (h *Handlers) CreateClient(c *fiber.Ctx) error {
	var in mastersvc.ClientInput
	if err := params.Body(c, &in); err != nil {
		return response.FromError(c, err)
	}
	client, err := h.Service.CreateClient(c.UserContext(), middleware.GetSession(c).Actor(), in)
	if err != nil {
		return response.FromError(c, err)
	}
	log.Info().Str("client_id", client.ClientID.String()).Str("code", client.Code).Msg("master: client created")
	return response.SuccessCreated(c, "Client created successfully", client, nil)
}

// PUT /api/mst/clients/:id
func (h *Handlers) UpdateClient(c *fiber.Ctx) error {
	id, err := params.ID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var in mastersvc.ClientInput
	if err := params.Body(c, &in); err != nil {
		return response.FromError(c, err)
	}
	client, err := h.Service.UpdateClient(c.UserContext(), middleware.GetSession(c).Actor(), id, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Client updated successfully", client, nil)
}

// DELETE /api/mst/clients/:id
func (h *Handlers) DeleteClient(c *fiber.Ctx) error {
	id, err := params.ID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.Service.DeleteClient(c.UserContext(), middleware.GetSession(c).Actor(), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Client deleted successfully", nil, nil)
}
