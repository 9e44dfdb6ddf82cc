package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/drivingschool_backend/internal/api/http/handler"
	"github.com/Alijeyrad/drivingschool_backend/pkg/authorize"
)

func (r *Router) registerCatalogRoutes(api fiber.Router, plans *handler.PlanHandler, inst *handler.InstructorHandler, g guards) {
	managePlans := g.perm(authorize.ResourcePlan, authorize.ActionManage)
	manageInstructors := g.perm(authorize.ResourceInstructor, authorize.ActionManage)

	p := api.Group("/plans")
	p.Get("/", plans.List)
	p.Get("/:slug", plans.Get)
	p.Post("/", g.auth, g.principal, managePlans, plans.Create)
	p.Put("/:id", g.auth, g.principal, managePlans, plans.Update)
	p.Delete("/:id", g.auth, g.principal, managePlans, plans.Delete)

	i := api.Group("/instructors")
	i.Get("/", inst.List)
	i.Get("/:id/slots", inst.Slots)
	i.Post("/", g.auth, g.principal, manageInstructors, inst.Create)
	i.Patch("/:id/availability", g.auth, g.principal, manageInstructors, inst.SetAvailability)

	api.Get("/slots", inst.SlotsQuery)
}
