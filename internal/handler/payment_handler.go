package handler

import (
	"go-duka-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type PaymentHandler struct {
	service service.PaymentService
}

func NewPaymentHandler(s service.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: s}
}

func (h *PaymentHandler) InitiateSTKPush(c *fiber.Ctx) error {
	var in service.InitiatePaymentInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if in.PhoneNumber == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "phone_number is required"})
	}

	payment, err := h.service.InitiateSTKPush(c.Context(), in, actorFromCtx(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "STK push sent", "data": payment})
}

// Callback receives the gateway's async result. It always answers 200 so
// the gateway stops retrying; integrity problems are logged server-side.
func (h *PaymentHandler) Callback(c *fiber.Ctx) error {
	if err := h.service.HandleCallback(c.Body()); err != nil {
		return c.JSON(fiber.Map{"status": "ignored"})
	}
	return c.JSON(fiber.Map{"status": "success"})
}
