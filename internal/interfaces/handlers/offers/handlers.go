// Package offers serves promotional offers.
package offers

import (
	offersvc "wealthdesk-backend/internal/application/offers"
	"wealthdesk-backend/internal/middleware"
	"wealthdesk-backend/internal/pkg/params"
	"wealthdesk-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *offersvc.Service
}

// GET /api/offers?all=true
func (h *Handlers) List(c *fiber.Ctx) error {
	all, err := params.Bool(c, "all")
	if err != nil {
		return response.FromError(c, err)
	}
	offers, err := h.Service.List(c.UserContext(), middleware.GetSession(c), all != nil && *all)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Offers fetched successfully", offers, nil)
}

// GET /api/offers/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := params.ID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	o, err := h.Service.Get(c.UserContext(), middleware.GetSession(c), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Offer fetched successfully", o, nil)
}

// POST /api/offers
func (h *Handlers) Create(c *fiber.Ctx) error {
	var in offersvc.Input
	if err := params.Body(c, &in); err != nil {
		return response.FromError(c, err)
	}
	o, err := h.Service.Create(c.UserContext(), middleware.GetSession(c).Actor(), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Offer created successfully", o, nil)
}

// PUT /api/offers/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := params.ID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var in offersvc.Input
	if err := params.Body(c, &in); err != nil {
		return response.FromError(c, err)
	}
	o, err := h.Service.Update(c.UserContext(), middleware.GetSession(c).Actor(), id, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Offer updated successfully", o, nil)
}

// DELETE /api/offers/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := params.ID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.Service.Delete(c.UserContext(), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Offer deleted successfully", nil, nil)
}
