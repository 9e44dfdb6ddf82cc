package handler

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Alijeyrad/drivingschool_backend/internal/service/cart"
	"github.com/Alijeyrad/drivingschool_backend/internal/service/purchase"
)

type CartHandler struct {
	carts     cart.Service
	purchases purchase.Service
}

func NewCartHandler(carts cart.Service, purchases purchase.Service) *CartHandler {
	return &CartHandler{carts: carts, purchases: purchases}
}

// GET /api/v1/cart
func (h *CartHandler) Get(c fiber.Ctx) error {
	sid, err := studentID(c)
	if err != nil {
		return fail(c, err)
	}

	view, err := h.carts.Get(c.Context(), sid)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, view)
}

// POST /api/v1/cart/items
func (h *CartHandler) Add(c fiber.Ctx) error {
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

	res, err := h.carts.Add(c.Context(), sid, body.PlanID)
	if err != nil {
		return fail(c, err)
	}
	if !res.Added {
		return okMessage(c, "This plan is already in your cart.", res)
	}
	return created(c, "Plan added to cart.", res)
}

// DELETE /api/v1/cart/items/:id
func (h *CartHandler) Remove(c fiber.Ctx) error {
	sid, err := studentID(c)
	if err != nil {
		return fail(c, err)
	}
	itemID, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	if err := h.carts.Remove(c.Context(), sid, itemID); err != nil {
		return fail(c, err)
	}
	return okMessage(c, "Item removed from cart.", nil)
}

// POST /api/v1/cart/checkout
func (h *CartHandler) Checkout(c fiber.Ctx) error {
	sid, err := studentID(c)
	if err != nil {
		return fail(c, err)
	}

	res, err := h.purchases.Checkout(c.Context(), sid)
	if err != nil {
		return fail(c, err)
	}
	return okMessage(c, "Payment successful! Your lesson credits have been added.", res)
}
