package handler

import (
	"time"

	"go-duka-pos/internal/repository"
	"go-duka-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type SaleHandler struct {
	ledger   service.LedgerService
	saleRepo repository.SaleRepository
}

func NewSaleHandler(ledger service.LedgerService, saleRepo repository.SaleRepository) *SaleHandler {
	return &SaleHandler{ledger: ledger, saleRepo: saleRepo}
}

func (h *SaleHandler) CreateSale(c *fiber.Ctx) error {
	var in service.RecordSaleInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	// Header wins over the body field.
	if key := c.Get("Idempotency-Key"); key != "" {
		in.IdempotencyKey = key
	}

	sale, err := h.ledger.RecordSale(in, actorFromCtx(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Sale recorded", "data": sale})
}

func (h *SaleHandler) GetSales(c *fiber.Ctx) error {
	if dateStr := c.Query("date"); dateStr != "" {
		day, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date format. Use YYYY-MM-DD"})
		}
		sales, err := h.saleRepo.FindByDay(day)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(sales)
	}

	sales, err := h.saleRepo.FindAll()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sales)
}

func (h *SaleHandler) GetSale(c *fiber.Ctx) error {
	saleID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid sale ID"})
	}

	sale, err := h.saleRepo.FindByID(saleID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Sale not found"})
	}
	return c.JSON(sale)
}

func (h *SaleHandler) DeleteSale(c *fiber.Ctx) error {
	saleID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid sale ID"})
	}

	if err := h.ledger.DeleteSale(saleID, actorFromCtx(c)); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Sale deleted, stock restored"})
}

func (h *SaleHandler) Restock(c *fiber.Ctx) error {
	productID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var in service.RestockInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	in.ProductID = productID

	product, err := h.ledger.Restock(in, actorFromCtx(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Stock updated", "data": product})
}
