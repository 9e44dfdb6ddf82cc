package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/drivingschool_backend/internal/service/catalog"
)

type PlanHandler struct {
	svc catalog.Service
}

func NewPlanHandler(svc catalog.Service) *PlanHandler {
	return &PlanHandler{svc: svc}
}

// GET /api/v1/plans
func (h *PlanHandler) List(c fiber.Ctx) error {
	groups, err := h.svc.ListActive(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return ok(c, groups)
}

// GET /api/v1/plans/:slug
func (h *PlanHandler) Get(c fiber.Ctx) error {
	plan, err := h.svc.GetBySlug(c.Context(), c.Params("slug"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, plan)
}

// POST /api/v1/plans
func (h *PlanHandler) Create(c fiber.Ctx) error {
	var body catalog.PlanInput
	if err := bindJSON(c, &body); err != nil {
		return fail(c, err)
	}

	plan, err := h.svc.Create(c.Context(), currentPrincipal(c), body)
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Plan created.", plan)
}

// PUT /api/v1/plans/:id
func (h *PlanHandler) Update(c fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var body catalog.PlanInput
	if err := bindJSON(c, &body); err != nil {
		return fail(c, err)
	}

	plan, err := h.svc.Update(c.Context(), currentPrincipal(c), id, body)
	if err != nil {
		return fail(c, err)
	}
	return okMessage(c, "Plan updated.", plan)
}

// DELETE /api/v1/plans/:id
func (h *PlanHandler) Delete(c fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	if err := h.svc.Delete(c.Context(), currentPrincipal(c), id); err != nil {
		return fail(c, err)
	}
	return okMessage(c, "Plan deleted.", nil)
}
