package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/drivingschool_backend/internal/service/account"
)

type ProfileHandler struct {
	svc account.Service
}

func NewProfileHandler(svc account.Service) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

// GET /api/v1/me
func (h *ProfileHandler) Get(c fiber.Ctx) error {
	view, err := h.svc.Profile(c.Context(), currentPrincipal(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, view)
}

// PATCH /api/v1/me
func (h *ProfileHandler) Update(c fiber.Ctx) error {
	var body account.UpdateProfileRequest
	if err := bindJSON(c, &body); err != nil {
		return fail(c, err)
	}

	view, err := h.svc.UpdateProfile(c.Context(), currentPrincipal(c), body)
	if err != nil {
		return fail(c, err)
	}
	return okMessage(c, "Profile updated successfully!", view)
}
