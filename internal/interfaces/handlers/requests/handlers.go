// Package requests serves investment, withdrawal and referral requests.
package requests

import (
	"strings"

	reqsvc "wealthdesk-backend/internal/application/requests"
	"wealthdesk-backend/internal/middleware"
	"wealthdesk-backend/internal/pkg/params"
	"wealthdesk-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *reqsvc.Service
}

func filter(c *fiber.Ctx) (reqsvc.Filter, error) {
	clientID, err := params.OptionalID(c, "clientId")
	if err != nil {
		return reqsvc.Filter{}, err
	}
	return reqsvc.Filter{Status: strings.ToLower(strings.TrimSpace(c.Query("status"))), ClientID: clientID}, nil
}

// GET /api/requests/investment
func (h *Handlers) ListInvestments(c *fiber.Ctx) error {
	f, err := filter(c)
	if err != nil {
		return response.FromError(c, err)
	}
	out, err := h.Service.ListInvestments(c.UserContext(), middleware.GetSession(c), f)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Investment requests fetched successfully", out, nil)
}

// POST /api/requests/investment
func (h *Handlers) CreateInvestment(c *fiber.Ctx) error {
	var in reqsvc.InvestmentInput
	if err := params.Body(c, &in); err != nil {
		return response.FromError(c, err)
	}
	out, err := h.Service.CreateInvestment(c.UserContext(), middleware.GetSession(c), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Investment request created successfully", out, nil)
}

// PATCH /api/requests/investment/:id/status
func (h *Handlers) ReviewInvestment(c *fiber.Ctx) error {
	id, err := params.ID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var in reqsvc.ReviewInput
	if err := params.Body(c, &in); err != nil {
		return response.FromError(c, err)
	}
	out, err := h.Service.ReviewInvestment(c.UserContext(), middleware.GetSession(c), id, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Investment request "+out.Status, out, nil)
}

// GET /api/requests/withdrawal
func (h *Handlers) ListWithdrawals(c *fiber.Ctx) error {
	f, err := filter(c)
	if err != nil {
		return response.FromError(c, err)
	}
	out, err := h.Service.ListWithdrawals(c.UserContext(), middleware.GetSession(c), f)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Withdrawal requests fetched successfully", out, nil)
}

// POST /api/requests/withdrawal
func (h *Handlers) CreateWithdrawal(c *fiber.Ctx) error {
	var in reqsvc.WithdrawalInput
	if err := params.Body(c, &in); err != nil {
		return response.FromError(c, err)
	}
	out, err := h.Service.CreateWithdrawal(c.UserContext(), middleware.GetSession(c), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Withdrawal request created successfully", out, nil)
}

// PATCH /api/requests/withdrawal/:id/status
func (h *Handlers) ReviewWithdrawal(c *fiber.Ctx) error {
	id, err := params.ID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var in reqsvc.ReviewInput
	if err := params.Body(c, &in); err != nil {
		return response.FromError(c, err)
	}
	out, err := h.Service.ReviewWithdrawal(c.UserContext(), middleware.GetSession(c), id, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Withdrawal request "+out.Status, out, nil)
}

// GET /api/requests/referral
func (h *Handlers) ListReferrals(c *fiber.Ctx) error {
	f, err := filter(c)
	if err != nil {
		return response.FromError(c, err)
	}
	out, err := h.Service.ListReferrals(c.UserContext(), middleware.GetSession(c), f)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Referral requests fetched successfully", out, nil)
}

// POST /api/requests/referral
func (h *Handlers) CreateReferral(c *fiber.Ctx) error {
	var in reqsvc.ReferralInput
	if err := params.Body(c, &in); err != nil {
		return response.FromError(c, err)
	}
	out, err := h.Service.CreateReferral(c.UserContext(), middleware.GetSession(c), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Referral request created successfully", out, nil)
}

// PATCH /api/requests/referral/:id/status
func (h *Handlers) ReviewReferral(c *fiber.Ctx) error {
	id, err := params.ID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var in reqsvc.ReviewInput
	if err := params.Body(c, &in); err != nil {
		return response.FromError(c, err)
	}
	out, err := h.Service.ReviewReferral(c.UserContext(), middleware.GetSession(c), id, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Referral request "+out.Status, out, nil)
}
