package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"go-pos-ledger/internal/service"
)

// respondError maps ledger errors to HTTP statuses. Anything unrecognised is
// a 500 and its detail is not echoed.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNotCancellable),
		errors.Is(err, service.ErrInsufficientStock):
		return c.Status(409).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidRequest):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrUnknownSale),
		errors.Is(err, service.ErrUnknownProduct),
		errors.Is(err, service.ErrUnknownPayment):
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(500).JSON(fiber.Map{"error": "Internal server error"})
	}
}
