package handler

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Alijeyrad/drivingschool_backend/internal/apperr"
	"github.com/Alijeyrad/drivingschool_backend/internal/principal"
)

var (
	errInvalidBody = apperr.Validation("invalid request body")
	errInvalidID   = apperr.Validation("invalid id")
	errStudentOnly = apperr.Forbidden("only students can do this")
)

func currentPrincipal(c fiber.Ctx) principal.Principal {
	return principal.From(c.Context())
}

func paramUUID(c fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, errInvalidID
	}
	return id, nil
}

// bindJSON decodes the body into out. An empty body is an error.
func bindJSON(c fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return errInvalidBody
	}
	if err := c.Bind().JSON(out); err != nil {
		return errInvalidBody
	}
	return nil
}

func studentID(c fiber.Ctx) (uuid.UUID, error) {
	p := currentPrincipal(c)
	if !p.IsStudent() {
		return uuid.Nil, errStudentOnly
	}
	return p.StudentID, nil
}
