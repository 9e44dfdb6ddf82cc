package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/drivingschool_backend/internal/api/http/handler"
	"github.com/Alijeyrad/drivingschool_backend/pkg/authorize"
)

func (r *Router) registerCommunityRoutes(api fiber.Router, h *handler.CommunityHandler, g guards) {
	api.Post("/chatbot", handler.Chatbot)

	api.Get("/reviews", h.Reviews)
	api.Post("/reviews", g.auth, g.principal, g.perm(authorize.ResourceReview, authorize.ActionCreate), h.SubmitReview)

	api.Post("/careers", h.Apply)
	api.Get("/careers", g.auth, g.principal, g.perm(authorize.ResourcePortalAdmin, authorize.ActionRead), h.Applications)
	api.Post("/contact", h.Contact)

	api.Get("/referrals", g.auth, g.principal, g.perm(authorize.ResourceReferral, authorize.ActionCreate), h.Referrals)
	api.Post("/referrals", g.auth, g.principal, g.perm(authorize.ResourceReferral, authorize.ActionCreate), h.Refer)

	api.Post("/gift-cards", g.auth, g.principal, g.perm(authorize.ResourceGiftCard, authorize.ActionManage), h.IssueGiftCard)
	api.Post("/gift-cards/redeem", g.auth, g.principal, g.perm(authorize.ResourceGiftCard, authorize.ActionExecute), h.RedeemGiftCard)
}
