package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"go-pos-ledger/internal/service"
)

type PaymentHandler struct {
	service service.PaymentService
	logger  *zap.Logger
}

func NewPaymentHandler(s service.PaymentService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{service: s, logger: logger}
}

func (h *PaymentHandler) AddPayment(c *fiber.Ctx) error {
	var req service.PaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	sale, err := h.service.AddPayment(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return h.fail(c, "add payment", err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Payment added", "data": sale})
}

func (h *PaymentHandler) UpdatePayment(c *fiber.Ctx) error {
	var req service.PaymentUpdate
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	sale, err := h.service.UpdatePayment(c.UserContext(), c.Params("id"), c.Params("paymentId"), req)
	if err != nil {
		return h.fail(c, "update payment", err)
	}
	return c.JSON(fiber.Map{"message": "Payment updated", "data": sale})
}

func (h *PaymentHandler) DeletePayment(c *fiber.Ctx) error {
	sale, err := h.service.DeletePayment(c.UserContext(), c.Params("id"), c.Params("paymentId"))
	if err != nil {
		return h.fail(c, "delete payment", err)
	}
	return c.JSON(fiber.Map{"message": "Payment removed", "data": sale})
}

func (h *PaymentHandler) fail(c *fiber.Ctx, op string, err error) error {
	h.logger.Warn(op+" rejected",
		zap.String("sale_id", c.Params("id")),
		zap.String("payment_id", c.Params("paymentId")),
		zap.Error(err),
	)
	return respondError(c, err)
}
