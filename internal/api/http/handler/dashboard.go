package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/drivingschool_backend/internal/service/dashboard"
)

type DashboardHandler struct {
	svc dashboard.Service
}

func NewDashboardHandler(svc dashboard.Service) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// GET /api/v1/dashboard
func (h *DashboardHandler) Home(c fiber.Ctx) error {
	home, err := h.svc.Home(c.Context(), currentPrincipal(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, home)
}

// GET /api/v1/portal/student
func (h *DashboardHandler) Student(c fiber.Ctx) error {
	d, err := h.svc.Student(c.Context(), currentPrincipal(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, d)
}

// GET /api/v1/portal/instructor
func (h *DashboardHandler) Instructor(c fiber.Ctx) error {
	d, err := h.svc.Instructor(c.Context(), currentPrincipal(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, d)
}

// GET /api/v1/portal/admin
func (h *DashboardHandler) Admin(c fiber.Ctx) error {
	d, err := h.svc.Admin(c.Context(), currentPrincipal(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, d)
}

// GET /api/v1/stats
func (h *DashboardHandler) Public(c fiber.Ctx) error {
	stats, err := h.svc.Public(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return ok(c, stats)
}
