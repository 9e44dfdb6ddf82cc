package handler

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Alijeyrad/drivingschool_backend/internal/model"
	"github.com/Alijeyrad/drivingschool_backend/internal/service/purchase"
)

type PurchaseHandler struct {
	svc purchase.Service
}

func NewPurchaseHandler(svc purchase.Service) *PurchaseHandler {
	return &PurchaseHandler{svc: svc}
}

// GET /api/v1/purchases?status=completed
func (h *PurchaseHandler) List(c fiber.Ctx) error {
	sid, err := studentID(c)
	if err != nil {
		return fail(c, err)
	}

	list, err := h.svc.ListForStudent(c.Context(), sid, model.PaymentStatus(c.Query("status")))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, list)
}

// POST /api/v1/purchases
func (h *PurchaseHandler) Start(c fiber.Ctx) error {
	sid, err := studentID(c)
	if err != nil {
		return fail(c, err)
	}
	var body struct {
		PlanID uuid.UUID `json:"plan_id"`
	}
	if err := bindJSON(c, &body); err != nil {
		return fail(c, err)
	}
	if body.PlanID == uuid.Nil {
		return badRequest(c, "plan_id is required")
	}

	p, err := h.svc.Start(c.Context(), sid, body.PlanID)
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Purchase started.", p)
}

// POST /api/v1/purchases/:id/pay
func (h *PurchaseHandler) Pay(c fiber.Ctx) error {
	sid, err := studentID(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	p, err := h.svc.Pay(c.Context(), sid, id)
	if err != nil {
		return fail(c, err)
	}
	return okMessage(c, "Payment successful! Your lesson credits have been added.", p)
}
