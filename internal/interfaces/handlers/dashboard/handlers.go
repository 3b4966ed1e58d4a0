// Package dashboard serves the role-scoped reports under /api/dashboard.
package dashboard

import (
	dashsvc "wealthdesk-backend/internal/application/dashboard"
	"wealthdesk-backend/internal/middleware"
	"wealthdesk-backend/internal/pkg/params"
	"wealthdesk-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *dashsvc.Service
}

func respond(c *fiber.Ctx, msg string, data interface{}, err error) error {
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, msg, data, nil)
}

// GET /api/dashboard/stats
func (h *Handlers) Stats(c *fiber.Ctx) error {
	data, err := h.Service.Stats(c.UserContext(), middleware.GetSession(c))
	return respond(c, "Dashboard stats fetched successfully", data, err)
}

// GET /api/dashboard/totals
func (h *Handlers) Totals(c *fiber.Ctx) error {
	data, err := h.Service.Totals(c.UserContext(), middleware.GetSession(c))
	return respond(c, "Totals fetched successfully", data, err)
}

// GET /api/dashboard/monthly-trend?months=
func (h *Handlers) MonthlyTrend(c *fiber.Ctx) error {
	months, err := params.Int(c, "months", dashsvc.DefaultTrendMonths, dashsvc.MaxTrendMonths)
	if err != nil {
		return response.FromError(c, err)
	}
	data, err := h.Service.MonthlyTrend(c.UserContext(), middleware.GetSession(c), months)
	return respond(c, "Monthly trend fetched successfully", data, err)
}

// GET /api/dashboard/branch-performance
func (h *Handlers) BranchPerformance(c *fiber.Ctx) error {
	data, err := h.Service.BranchPerformance(c.UserContext(), middleware.GetSession(c))
	return respond(c, "Branch performance fetched successfully", data, err)
}

// GET /api/dashboard/kyc-status
func (h *Handlers) KYCStatus(c *fiber.Ctx) error {
	data, err := h.Service.KYCStatus(c.UserContext(), middleware.GetSession(c))
	return respond(c, "KYC status fetched successfully", data, err)
}

// GET /api/dashboard/demographics
func (h *Handlers) Demographics(c *fiber.Ctx) error {
	data, err := h.Service.Demographics(c.UserContext(), middleware.GetSession(c))
	return respond(c, "Demographics fetched successfully", data, err)
}

// GET /api/dashboard/revenue-breakdown
func (h *Handlers) RevenueBreakdown(c *fiber.Ctx) error {
	data, err := h.Service.RevenueBreakdown(c.UserContext(), middleware.GetSession(c))
	return respond(c, "Revenue breakdown fetched successfully", data, err)
}

// GET /api/dashboard/top-performers?limit=
func (h *Handlers) TopPerformers(c *fiber.Ctx) error {
	k, err := params.Int(c, "limit", dashsvc.DefaultTopK, 50)
	if err != nil {
		return response.FromError(c, err)
	}
	data, err := h.Service.TopPerformers(c.UserContext(), middleware.GetSession(c), k)
	return respond(c, "Top performers fetched successfully", data, err)
}

// GET /api/dashboard/reconciliation
func (h *Handlers) Reconciliation(c *fiber.Ctx) error {
	data, err := h.Service.Reconciliation(c.UserContext(), middleware.GetSession(c))
	return respond(c, "Reconciliation fetched successfully", data, err)
}
