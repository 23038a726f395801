package handler

import (
	"go-duka-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	service service.ReportService
}

func NewReportHandler(s service.ReportService) *ReportHandler {
	return &ReportHandler{service: s}
}

// rangeDays maps the UI's range param to a day count
func rangeDays(rangeParam string) int {
	switch rangeParam {
	case "7d":
		return 7
	case "1m":
		return 30
	case "3m":
		return 90
	case "6m":
		return 180
	case "12m":
		return 365
	default:
		return 7
	}
}

func (h *ReportHandler) GetShopStats(c *fiber.Ctx) error {
	stats, err := h.service.GetShopStats()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

func (h *ReportHandler) GetStockMovement(c *fiber.Ctx) error {
	days := rangeDays(c.Query("range", "7d"))

	data, err := h.service.GetStockMovement(days)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(data)
}

func (h *ReportHandler) GetSalesSummary(c *fiber.Ctx) error {
	days := rangeDays(c.Query("range", "7d"))

	data, err := h.service.GetSalesSummary(days)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(data)
}
