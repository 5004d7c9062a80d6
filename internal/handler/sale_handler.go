package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"go-pos-ledger/internal/service"
)

type SaleHandler struct {
	service service.SaleService
	logger  *zap.Logger
}

func NewSaleHandler(s service.SaleService, logger *zap.Logger) *SaleHandler {
	return &SaleHandler{service: s, logger: logger}
}

func (h *SaleHandler) GetSales(c *fiber.Ctx) error {
	sales, err := h.service.ListSales(c.UserContext())
	if err != nil {
		h.logger.Error("list sales", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch sales"})
	}
	return c.JSON(sales)
}

func (h *SaleHandler) GetSale(c *fiber.Ctx) error {
	sale, err := h.service.GetSale(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sale)
}

func (h *SaleHandler) CreateSale(c *fiber.Ctx) error {
	var req service.CreateSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	sale, err := h.service.CreateSale(c.UserContext(), req)
	if err != nil {
		return h.fail(c, "create sale", err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Sale recorded", "data": sale})
}

func (h *SaleHandler) UpdateSale(c *fiber.Ctx) error {
	var req service.MetadataUpdate
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	sale, err := h.service.UpdateMetadata(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return h.fail(c, "update sale", err)
	}
	return c.JSON(fiber.Map{"message": "Sale updated", "data": sale})
}

func (h *SaleHandler) DeleteSale(c *fiber.Ctx) error {
	if err := h.service.DeleteSale(c.UserContext(), c.Params("id")); err != nil {
		return h.fail(c, "delete sale", err)
	}
	return c.JSON(fiber.Map{"message": "Sale cancelled, stock restored"})
}

func (h *SaleHandler) fail(c *fiber.Ctx, op string, err error) error {
	h.logger.Warn(op+" rejected", zap.String("sale_id", c.Params("id")), zap.Error(err))
	return respondError(c, err)
}
