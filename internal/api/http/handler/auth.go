package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/drivingschool_backend/internal/service/account"
	"github.com/Alijeyrad/drivingschool_backend/pkg/reqctx"
)

type AuthHandler struct {
	svc account.Service
}

func NewAuthHandler(svc account.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// POST /api/v1/auth/register
func (h *AuthHandler) Register(c fiber.Ctx) error {
	var body account.RegisterRequest
	if err := bindJSON(c, &body); err != nil {
		return fail(c, err)
	}

	user, err := h.svc.Register(c.Context(), body)
	if err != nil {
		return fail(c, err)
	}

	return created(c, "Registration successful! Please log in.", user)
}

// POST /api/v1/auth/login
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var body account.LoginRequest
	if err := bindJSON(c, &body); err != nil {
		return fail(c, err)
	}

	tokens, err := h.svc.Login(c.Context(), body)
	if err != nil {
		return fail(c, err)
	}

	return okMessage(c, "Login successful!", tokens)
}

// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c fiber.Ctx) error {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := bindJSON(c, &body); err != nil {
		return fail(c, err)
	}
	if body.RefreshToken == "" {
		return badRequest(c, "refresh_token is required")
	}

	tokens, err := h.svc.Refresh(c.Context(), body.RefreshToken)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, tokens)
}

// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	sid, found := reqctx.SessionIDFromContext(c.Context())
	if !found {
		return okMessage(c, "Logged out.", nil)
	}

	if err := h.svc.Logout(c.Context(), sid); err != nil {
		return fail(c, err)
	}

	return okMessage(c, "Logged out.", nil)
}
