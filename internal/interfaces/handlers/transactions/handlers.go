package transactions

import (
	importsvc "wealthdesk-backend/internal/application/imports"
	txsvc "wealthdesk-backend/internal/application/transactions"
	"wealthdesk-backend/internal/middleware"
	"wealthdesk-backend/internal/pkg/params"
	"wealthdesk-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *txsvc.Service
	Imports *importsvc.Service
}

// GET /api/transactions?clientId=&type=&status=&from=&to=
func (h *Handlers) List(c *fiber.Ctx) error {
	f, err := txsvc.ParseFilter(c.Query("clientId"), c.Query("type"), c.Query("status"), c.Query("from"), c.Query("to"))
	if err != nil {
		return response.FromError(c, err)
	}
	data, err := h.Service.List(c.UserContext(), middleware.GetSession(c), f)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Transactions fetched successfully", data, fiber.Map{"count": len(data)})
}

// POST /api/transactions
func (h *Handlers) Create(c *fiber.Ctx) error {
	var in txsvc.CreateInput
	if err := params.Body(c, &in); err != nil {
		return response.FromError(c, err)
	}
	v, err := h.Service.Create(c.UserContext(), middleware.GetSession(c), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Transaction created successfully", v, nil)
}

// POST /api/transactions/bulk-upload?type=investment (multipart "file")
func (h *Handlers) BulkUpload(c *fiber.Ctx) error {
	name, data, err := params.File(c)
	if err != nil {
		return response.FromError(c, err)
	}
	rep, err := h.Imports.ImportTransactions(c.UserContext(), middleware.GetSession(c).Actor(), c.Query("type"), name, data)
	if err != nil {
		return response.FromError(c, err)
	}
	log.Info().Str("batch_id", rep.ImportBatchID.String()).Str("kind", rep.Kind).
		Int("success", rep.SuccessCount).Int("errors", rep.ErrorCount).Msg("transactions: bulk upload finished")
	msg := "Import completed"
	if !rep.OK() {
		msg = "Import completed with errors"
	}
	return response.Success(c, msg, rep, nil)
}
