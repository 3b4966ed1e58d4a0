package auth

import (
	authsvc "wealthdesk-backend/internal/application/auth"
	"wealthdesk-backend/internal/middleware"
	"wealthdesk-backend/internal/pkg/params"
	"wealthdesk-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handlers holds dependencies for auth endpoints.
type Handlers struct {
	Service *authsvc.Service
}

// Login POST /api/auth/login
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req authsvc.LoginInput
	if err := params.Body(c, &req); err != nil {
		return response.FromError(c, authsvc.ErrCredentialsRequired)
	}
	res, err := h.Service.Login(c.UserContext(), req)
	if err != nil {
		return response.FromError(c, err)
	}
	log.Info().Str("user_id", res.Session.UserID.String()).Str("role", res.Session.RoleName).Msg("auth: login")
	return response.Success(c, "Login successful", res, nil)
}

// Signup POST /api/auth/signup
func (h *Handlers) Signup(c *fiber.Ctx) error {
	var req authsvc.SignupInput
	if err := params.Body(c, &req); err != nil {
		return response.FromError(c, err)
	}
	res, err := h.Service.Signup(c.UserContext(), req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Signup successful", res, nil)
}

// Session GET /api/auth/session
func (h *Handlers) Session(c *fiber.Ctx) error {
	view, err := h.Service.CurrentSession(c.UserContext(), middleware.GetSession(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Session fetched successfully", view, nil)
}

// Logout POST /api/auth/logout
func (h *Handlers) Logout(c *fiber.Ctx) error {
	if err := h.Service.Logout(c.UserContext(), middleware.GetSession(c)); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Logout successful", nil, nil)
}

type forgotRequest struct {
	UserName string `json:"userName"`
}

// ForgotPassword POST /api/auth/forgot-password
func (h *Handlers) ForgotPassword(c *fiber.Ctx) error {
	var req forgotRequest
	if err := params.Body(c, &req); err != nil {
		return response.FromError(c, err)
	}
	if err := h.Service.ForgotPassword(c.UserContext(), req.UserName); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "If the account exists, a reset link has been sent", nil, nil)
}

type resetRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ResetPassword POST /api/auth/reset-password
func (h *Handlers) ResetPassword(c *fiber.Ctx) error {
	var req resetRequest
	if err := params.Body(c, &req); err != nil {
		return response.FromError(c, err)
	}
	if err := h.Service.ResetPassword(c.UserContext(), req.Token, req.Password); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Password updated successfully", nil, nil)
}
