package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"go-pos-ledger/internal/service"
)

type ClientHandler struct {
	service service.ClientService
	logger  *zap.Logger
}

func NewClientHandler(s service.ClientService, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{service: s, logger: logger}
}

func (h *ClientHandler) GetClients(c *fiber.Ctx) error {
	clients, err := h.service.ListClients(c.UserContext())
	if err != nil {
		h.logger.Error("list clients", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch clients"})
	}
	return c.JSON(clients)
}

func (h *ClientHandler) CreateClient(c *fiber.Ctx) error {
	var req service.ClientRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	client, err := h.service.CreateClient(c.UserContext(), req)
	if err != nil {
		h.logger.Warn("create client rejected", zap.Error(err))
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Client added", "data": client})
}
