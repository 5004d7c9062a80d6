package handler

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"go-pos-ledger/internal/service"
)

type DashboardHandler struct {
	inventory service.InventoryService
	sales     service.SaleService
}

func NewDashboardHandler(inventory service.InventoryService, sales service.SaleService) *DashboardHandler {
	return &DashboardHandler{inventory: inventory, sales: sales}
}

// GetSalesMovement returns sales per day for charts
// Query params: days (default 7)
func (h *DashboardHandler) GetSalesMovement(c *fiber.Ctx) error {
	days, err := strconv.Atoi(c.Query("days", "7"))
	if err != nil || days <= 0 {
		days = 7
	}

	data, err := h.inventory.GetSalesMovement(c.UserContext(), days)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch sales movement"})
	}

	return c.JSON(fiber.Map{
		"period": days,
		"data":   data,
	})
}

// GetDashboardStats returns stock overview statistics
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.inventory.GetDashboardStats(c.UserContext())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch dashboard stats"})
	}
	return c.JSON(stats)
}

// GetBalances returns money owed and collected across sales
func (h *DashboardHandler) GetBalances(c *fiber.Ctx) error {
	summary, err := h.sales.GetBalances(c.UserContext())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch balances"})
	}
	return c.JSON(summary)
}

// GetFinancialStats returns revenue, costs and profit
// Query params: range = 7d | 1m | 3m | 6m | 12m | all (default all)
func (h *DashboardHandler) GetFinancialStats(c *fiber.Ctx) error {
	now := time.Now().UTC()
	var startDate time.Time

	switch c.Query("range", "all") {
	case "7d":
		startDate = now.AddDate(0, 0, -7)
	case "1m":
		startDate = now.AddDate(0, -1, 0)
	case "3m":
		startDate = now.AddDate(0, -3, 0)
	case "6m":
		startDate = now.AddDate(0, -6, 0)
	case "12m":
		startDate = now.AddDate(0, -12, 0)
	case "all":
	default:
		return c.Status(400).JSON(fiber.Map{"error": "Invalid range"})
	}

	stats, err := h.inventory.GetFinancialStats(c.UserContext(), startDate, now)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch financial stats"})
	}
	return c.JSON(stats)
}
