package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/drivingschool_backend/internal/model"
	"github.com/Alijeyrad/drivingschool_backend/internal/service/appointment"
)

type AppointmentHandler struct {
	svc appointment.Service
}

func NewAppointmentHandler(svc appointment.Service) *AppointmentHandler {
	return &AppointmentHandler{svc: svc}
}

// GET /api/v1/appointments
// Students get their lessons newest first, instructors their calendar in order.
func (h *AppointmentHandler) List(c fiber.Ctx) error {
	p := currentPrincipal(c)

	var (
		list []model.Appointment
		err  error
	)
	if p.IsInstructor() {
		list, err = h.svc.ListForInstructor(c.Context(), p)
	} else {
		list, err = h.svc.ListForStudent(c.Context(), p)
	}
	if err != nil {
		return fail(c, err)
	}
	return ok(c, list)
}

// GET /api/v1/appointments/:id
func (h *AppointmentHandler) Get(c fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	appt, err := h.svc.Get(c.Context(), currentPrincipal(c), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, appt)
}

// POST /api/v1/appointments
func (h *AppointmentHandler) Book(c fiber.Ctx) error {
	var body appointment.BookRequest
	if err := bindJSON(c, &body); err != nil {
		return fail(c, err)
	}

	appt, err := h.svc.Book(c.Context(), currentPrincipal(c), body)
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Lesson booked successfully!", appt)
}

// POST /api/v1/appointments/:id/cancel
func (h *AppointmentHandler) Cancel(c fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	appt, err := h.svc.Cancel(c.Context(), currentPrincipal(c), id)
	if err != nil {
		return fail(c, err)
	}
	return okMessage(c, "Appointment cancelled successfully.", appt)
}

// POST /api/v1/appointments/:id/reschedule
func (h *AppointmentHandler) Reschedule(c fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var body appointment.RescheduleRequest
	if err := bindJSON(c, &body); err != nil {
		return fail(c, err)
	}
	body.AppointmentID = id

	appt, err := h.svc.Reschedule(c.Context(), currentPrincipal(c), body)
	if err != nil {
		return fail(c, err)
	}
	return okMessage(c, "Appointment rescheduled successfully!", appt)
}

// POST /api/v1/appointments/:id/complete
func (h *AppointmentHandler) Complete(c fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	appt, err := h.svc.Complete(c.Context(), currentPrincipal(c), id)
	if err != nil {
		return fail(c, err)
	}
	return okMessage(c, "Appointment marked as completed.", appt)
}

// POST /api/v1/appointments/:id/no-show
func (h *AppointmentHandler) NoShow(c fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	appt, err := h.svc.MarkNoShow(c.Context(), currentPrincipal(c), id)
	if err != nil {
		return fail(c, err)
	}
	return okMessage(c, "Appointment marked as no-show.", appt)
}
