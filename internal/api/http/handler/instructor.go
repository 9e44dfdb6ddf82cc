package handler

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Alijeyrad/drivingschool_backend/internal/service/account"
	"github.com/Alijeyrad/drivingschool_backend/internal/service/scheduling"
)

type InstructorHandler struct {
	accounts account.Service
	schedule scheduling.Service
}

func NewInstructorHandler(accounts account.Service, schedule scheduling.Service) *InstructorHandler {
	return &InstructorHandler{accounts: accounts, schedule: schedule}
}

// GET /api/v1/instructors?all=true
func (h *InstructorHandler) List(c fiber.Ctx) error {
	onlyAvailable := c.Query("all") != "true"
	list, err := h.accounts.ListInstructors(c.Context(), onlyAvailable)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, list)
}

// POST /api/v1/instructors
func (h *InstructorHandler) Create(c fiber.Ctx) error {
	var body account.CreateInstructorRequest
	if err := bindJSON(c, &body); err != nil {
		return fail(c, err)
	}

	inst, err := h.accounts.CreateInstructor(c.Context(), currentPrincipal(c), body)
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Instructor created.", inst)
}

// PATCH /api/v1/instructors/:id/availability
func (h *InstructorHandler) SetAvailability(c fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var body struct {
		Available *bool `json:"is_available"`
	}
	if err := bindJSON(c, &body); err != nil {
		return fail(c, err)
	}
	if body.Available == nil {
		return badRequest(c, "is_available is required")
	}

	inst, err := h.accounts.SetInstructorAvailability(c.Context(), currentPrincipal(c), id, *body.Available)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, inst)
}

// GET /api/v1/instructors/:id/slots?date=YYYY-MM-DD
func (h *InstructorHandler) Slots(c fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	return h.slots(c, id, c.Query("date"))
}

// GET /api/v1/slots?instructor_id=&date=
func (h *InstructorHandler) SlotsQuery(c fiber.Ctx) error {
	raw, date := c.Query("instructor_id"), c.Query("date")
	if raw == "" || date == "" {
		return badRequest(c, "missing parameters")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return fail(c, errInvalidID)
	}
	return h.slots(c, id, date)
}

func (h *InstructorHandler) slots(c fiber.Ctx, instructorID uuid.UUID, date string) error {
	if date == "" {
		return badRequest(c, "missing parameters")
	}
	avail, err := h.schedule.AvailableSlots(c.Context(), instructorID, date)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, avail)
}
