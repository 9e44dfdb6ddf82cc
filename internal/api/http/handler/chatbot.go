package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/drivingschool_backend/internal/service/chatbot"
)

// POST /api/v1/chatbot
func Chatbot(c fiber.Ctx) error {
	var body struct {
		Message string `json:"message"`
	}
	if err := bindJSON(c, &body); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"response": chatbot.Reply(body.Message)})
}
