package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/drivingschool_backend/internal/service/community"
)

type CommunityHandler struct {
	svc community.Service
}

func NewCommunityHandler(svc community.Service) *CommunityHandler {
	return &CommunityHandler{svc: svc}
}

// ---------------------------------------------------------------------------
// Reviews
// ---------------------------------------------------------------------------

// GET /api/v1/reviews?limit=3
func (h *CommunityHandler) Reviews(c fiber.Ctx) error {
	n := community.AboutPageReviews
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			return badRequest(c, "limit must be a positive integer")
		}
		n = v
	}

	list, err := h.svc.LatestReviews(c.Context(), n)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, list)
}

// POST /api/v1/reviews
func (h *CommunityHandler) SubmitReview(c fiber.Ctx) error {
	var body community.ReviewRequest
	if err := bindJSON(c, &body); err != nil {
		return fail(c, err)
	}

	r, err := h.svc.SubmitReview(c.Context(), currentPrincipal(c), body)
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Thank you for your review!", r)
}

// ---------------------------------------------------------------------------
// Careers & contact
// ---------------------------------------------------------------------------

// POST /api/v1/careers (multipart: first_name, last_name, email, phone, cv)
func (h *CommunityHandler) Apply(c fiber.Ctx) error {
	req := community.JobApplicationRequest{
		FirstName: c.FormValue("first_name"),
		LastName:  c.FormValue("last_name"),
		Email:     c.FormValue("email"),
		Phone:     c.FormValue("phone"),
	}

	// A missing file is reported by the service.
	var cv *community.CV
	if fh, err := c.FormFile("cv"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return badRequest(c, "could not read uploaded file")
		}
		defer f.Close()
		cv = &community.CV{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Body:        f,
		}
	}

	app, err := h.svc.Apply(c.Context(), req, cv)
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Your application has been submitted successfully!", app)
}

// GET /api/v1/careers
func (h *CommunityHandler) Applications(c fiber.Ctx) error {
	list, err := h.svc.ListApplications(c.Context(), currentPrincipal(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, list)
}

// POST /api/v1/contact
func (h *CommunityHandler) Contact(c fiber.Ctx) error {
	var body community.ContactRequest
	if err := bindJSON(c, &body); err != nil {
		return fail(c, err)
	}

	msg, err := h.svc.Contact(c.Context(), body)
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Thank you for contacting us! We'll get back to you soon.", msg)
}

// ---------------------------------------------------------------------------
// Referrals & gift cards
// ---------------------------------------------------------------------------

// POST /api/v1/referrals
func (h *CommunityHandler) Refer(c fiber.Ctx) error {
	var body community.ReferralRequest
	if err := bindJSON(c, &body); err != nil {
		return fail(c, err)
	}

	ref, err := h.svc.Refer(c.Context(), currentPrincipal(c), body)
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Referral sent!", ref)
}

// GET /api/v1/referrals
func (h *CommunityHandler) Referrals(c fiber.Ctx) error {
	list, err := h.svc.ListReferrals(c.Context(), currentPrincipal(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, list)
}

// POST /api/v1/gift-cards
func (h *CommunityHandler) IssueGiftCard(c fiber.Ctx) error {
	var body community.IssueGiftCardRequest
	if err := bindJSON(c, &body); err != nil {
		return fail(c, err)
	}

	card, err := h.svc.IssueGiftCard(c.Context(), currentPrincipal(c), body)
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Gift card issued.", card)
}

// POST /api/v1/gift-cards/redeem
func (h *CommunityHandler) RedeemGiftCard(c fiber.Ctx) error {
	var body struct {
		Code string `json:"code"`
	}
	if err := bindJSON(c, &body); err != nil {
		return fail(c, err)
	}
	if body.Code == "" {
		return badRequest(c, "code is required")
	}

	res, err := h.svc.RedeemGiftCard(c.Context(), currentPrincipal(c), body.Code)
	if err != nil {
		return fail(c, err)
	}
	return okMessage(c, "Gift card redeemed!", res)
}
