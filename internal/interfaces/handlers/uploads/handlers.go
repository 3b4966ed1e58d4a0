package uploads

import (
	uploadsvc "wealthdesk-backend/internal/application/uploads"
	"wealthdesk-backend/internal/middleware"
	"wealthdesk-backend/internal/pkg/params"
	"wealthdesk-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers bundles upload handlers with the service.
type Handlers struct {
	Service *uploadsvc.Service
}

type uploadRequest struct {
	FileName string `json:"fileName"`
	ClientID string `json:"clientId"`
}

// OfferImage POST /api/uploads/offer-image
func (h *Handlers) OfferImage(c *fiber.Ctx) error {
	var req uploadRequest
	if err := params.Body(c, &req); err != nil {
		return response.FromError(c, err)
	}
	res, err := h.Service.OfferImage(c.UserContext(), req.FileName)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Upload URL generated", res, nil)
}

// KYCDocument POST /api/uploads/kyc-document
func (h *Handlers) KYCDocument(c *fiber.Ctx) error {
	var req uploadRequest
	if err := params.Body(c, &req); err != nil {
		return response.FromError(c, err)
	}
	res, err := h.Service.KYCDocument(c.UserContext(), middleware.GetSession(c), req.ClientID, req.FileName)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Upload URL generated", res, nil)
}
