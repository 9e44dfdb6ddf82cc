package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/drivingschool_backend/internal/api/http/handler"
	"github.com/Alijeyrad/drivingschool_backend/pkg/authorize"
)

func (r *Router) registerAppointmentRoutes(api fiber.Router, h *handler.AppointmentHandler, g guards) {
	group := api.Group("/appointments", g.auth, g.principal)
	group.Get("/", g.perm(authorize.ResourceAppointment, authorize.ActionList), h.List)
	group.Post("/", g.perm(authorize.ResourceAppointment, authorize.ActionCreate), h.Book)
	group.Get("/:id", g.perm(authorize.ResourceAppointment, authorize.ActionRead), h.Get)
	group.Post("/:id/cancel", g.perm(authorize.ResourceAppointment, authorize.ActionCancel), h.Cancel)
	group.Post("/:id/reschedule", g.perm(authorize.ResourceAppointment, authorize.ActionReschedule), h.Reschedule)
	group.Post("/:id/complete", g.perm(authorize.ResourceAppointment, authorize.ActionComplete), h.Complete)
	group.Post("/:id/no-show", g.perm(authorize.ResourceAppointment, authorize.ActionComplete), h.NoShow)
}
