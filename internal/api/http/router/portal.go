package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/drivingschool_backend/internal/api/http/handler"
	"github.com/Alijeyrad/drivingschool_backend/pkg/authorize"
)

func (r *Router) registerPortalRoutes(api fiber.Router, h *handler.DashboardHandler, g guards) {
	api.Get("/stats", h.Public)
	api.Get("/dashboard", g.optional, g.principal, h.Home)

	portal := api.Group("/portal", g.auth, g.principal)
	portal.Get("/student", g.perm(authorize.ResourcePortalStudent, authorize.ActionRead), h.Student)
	portal.Get("/instructor", g.perm(authorize.ResourcePortalInstructor, authorize.ActionRead), h.Instructor)
	portal.Get("/admin", g.perm(authorize.ResourcePortalAdmin, authorize.ActionRead), h.Admin)
}
