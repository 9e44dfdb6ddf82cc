package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/drivingschool_backend/internal/api/http/handler"
	"github.com/Alijeyrad/drivingschool_backend/pkg/authorize"
)

func (r *Router) registerPurchaseRoutes(api fiber.Router, cart *handler.CartHandler, purchases *handler.PurchaseHandler, g guards) {
	c := api.Group("/cart", g.auth, g.principal)
	c.Get("/", g.perm(authorize.ResourceCart, authorize.ActionManage), cart.Get)
	c.Post("/items", g.perm(authorize.ResourceCart, authorize.ActionManage), cart.Add)
	c.Delete("/items/:id", g.perm(authorize.ResourceCart, authorize.ActionManage), cart.Remove)
	c.Post("/checkout", g.perm(authorize.ResourceCart, authorize.ActionExecute), cart.Checkout)

	p := api.Group("/purchases", g.auth, g.principal)
	p.Get("/", g.perm(authorize.ResourcePurchase, authorize.ActionManage), purchases.List)
	p.Post("/", g.perm(authorize.ResourcePurchase, authorize.ActionManage), purchases.Start)
	p.Post("/:id/pay", g.perm(authorize.ResourcePurchase, authorize.ActionExecute), purchases.Pay)
}
