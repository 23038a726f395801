package handler

import (
	"go-duka-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AssistantHandler struct {
	service service.AssistantService
}

func NewAssistantHandler(s service.AssistantService) *AssistantHandler {
	return &AssistantHandler{service: s}
}

func (h *AssistantHandler) Chat(c *fiber.Ctx) error {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	answer, err := h.service.Ask(c.Context(), req.Prompt)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"answer": answer})
}
