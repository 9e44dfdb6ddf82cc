package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/drivingschool_backend/internal/api/http/handler"
)

func (r *Router) registerAuthRoutes(api fiber.Router, h *handler.AuthHandler, profile *handler.ProfileHandler, g guards) {
	group := api.Group("/auth")
	group.Post("/register", h.Register)
	group.Post("/login", h.Login)
	group.Post("/refresh", h.Refresh)
	group.Post("/logout", g.auth, h.Logout)

	api.Get("/me", g.auth, g.principal, profile.Get)
	api.Patch("/me", g.auth, g.principal, profile.Update)
}
