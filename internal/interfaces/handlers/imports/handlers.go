// Package imports serves client bulk upload, the sync API and the import history.
package imports

import (
	importsvc "wealthdesk-backend/internal/application/imports"
	"wealthdesk-backend/internal/middleware"
	"wealthdesk-backend/internal/pkg/params"
	"wealthdesk-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *importsvc.Service
}

func reportMessage(rep *importsvc.Report) string {
	if rep.OK() {
		return "Import completed"
	}
	return "Import completed with errors"
}

// POST /api/clients/bulk-upload (multipart "file")
func (h *Handlers) ClientsBulkUpload(c *fiber.Ctx) error {
	name, data, err := params.File(c)
	if err != nil {
		return response.FromError(c, err)
	}
	rep, err := h.Service.ImportClients(c.UserContext(), middleware.GetSession(c).Actor(), name, data)
	if err != nil {
		return response.FromError(c, err)
	}
	log.Info().Str("batch_id", rep.ImportBatchID.String()).Int("success", rep.SuccessCount).
		Int("skipped", rep.SkippedCount).Int("errors", rep.ErrorCount).Msg("imports: client upload finished")
	return response.Success(c, reportMessage(rep), rep, nil)
}

func records(c *fiber.Ctx) ([]map[string]interface{}, error) {
	var out []map[string]interface{}
	if err := params.Body(c, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// POST /api/sync/clients
func (h *Handlers) SyncClients(c *fiber.Ctx) error {
	recs, err := records(c)
	if err != nil {
		return response.FromError(c, err)
	}
	rep, err := h.Service.SyncClients(c.UserContext(), middleware.GetSession(c).Actor(), recs)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, reportMessage(rep), rep, nil)
}

// POST /api/sync/transactions
func (h *Handlers) SyncTransactions(c *fiber.Ctx) error {
	recs, err := records(c)
	if err != nil {
		return response.FromError(c, err)
	}
	rep, err := h.Service.SyncTransactions(c.UserContext(), middleware.GetSession(c).Actor(), recs)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, reportMessage(rep), rep, nil)
}

// GET /api/imports/batches?limit=
func (h *Handlers) ListBatches(c *fiber.Ctx) error {
	limit, err := params.Int(c, "limit", 50, 200)
	if err != nil {
		return response.FromError(c, err)
	}
	batches, err := h.Service.ListBatches(c.UserContext(), limit)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Import batches fetched successfully", batches, nil)
}
