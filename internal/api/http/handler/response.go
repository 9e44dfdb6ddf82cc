package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/drivingschool_backend/internal/apperr"
	"github.com/Alijeyrad/drivingschool_backend/pkg/reqctx"
	"github.com/Alijeyrad/drivingschool_backend/pkg/validate"
)

func ok(c fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"success": true, "data": data})
}

func okMessage(c fiber.Ctx, msg string, data any) error {
	return c.JSON(fiber.Map{"success": true, "message": msg, "data": data})
}

func created(c fiber.Ctx, msg string, data any) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "message": msg, "data": data})
}

func failure(c fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "error": msg})
}

func badRequest(c fiber.Ctx, msg string) error {
	return failure(c, fiber.StatusBadRequest, msg)
}

func internalError(c fiber.Ctx) error {
	return failure(c, fiber.StatusInternalServerError, "internal server error")
}

// fail writes err with the status of its kind. Unclassified errors are
// logged and reported as a bare 500.
func fail(c fiber.Ctx, err error) error {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		reqctx.Logger(c.Context()).Error("request failed",
			"method", c.Method(), "path", c.Path(), "error", err)
		return internalError(c)
	}

	body := fiber.Map{"success": false, "error": err.Error()}
	var fields validate.FieldErrors
	if errors.As(err, &fields) {
		var top *apperr.Error
		if errors.As(err, &top) {
			body["error"] = top.Msg
		}
		body["fields"] = fields
	}
	return c.Status(kind.HTTPStatus()).JSON(body)
}
