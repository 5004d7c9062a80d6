package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"go-pos-ledger/internal/middleware"
	"go-pos-ledger/internal/model"
	"go-pos-ledger/internal/service"
	"go-pos-ledger/internal/ws"
	"go-pos-ledger/pkg/jwt"
)

// Deps is everything the HTTP surface needs.
type Deps struct {
	Ledger    service.LedgerService
	Inventory service.InventoryService
	Logs      LogReader
	Hub       *ws.Hub
	Issuer    *jwt.Issuer
	Logger    *zap.Logger
}

// SetupRoutes mounts the API under /api/v1 and the live feed under /ws.
func SetupRoutes(app *fiber.App, d Deps) {
	saleHandler := NewSaleHandler(d.Ledger, d.Logger)
	paymentHandler := NewPaymentHandler(d.Ledger, d.Logger)
	invHandler := NewInventoryHandler(d.Inventory)
	dashHandler := NewDashboardHandler(d.Inventory, d.Ledger)
	auditHandler := NewAuditHandler(d.Logs)
	snapshotHandler := NewSnapshotHandler(d.Ledger, d.Logger)
	clientHandler := NewClientHandler(d.Ledger, d.Logger)

	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(d.Issuer))

	// Products
	protected.Get("/products", middleware.RequirePrivilege(model.PrivProductView), invHandler.GetProducts)
	protected.Get("/products/low-stock", middleware.RequirePrivilege(model.PrivProductView), invHandler.GetLowStock)
	protected.Get("/products/:id", middleware.RequirePrivilege(model.PrivProductView), invHandler.GetProduct)

	// Dashboard
	protected.Get("/dashboard/stats", middleware.RequirePrivilege(model.PrivDashboardView), dashHandler.GetDashboardStats)
	protected.Get("/dashboard/sales-movement", middleware.RequirePrivilege(model.PrivDashboardView), dashHandler.GetSalesMovement)
	protected.Get("/dashboard/balances", middleware.RequirePrivilege(model.PrivDashboardView), dashHandler.GetBalances)
	protected.Get("/dashboard/financial", middleware.RequirePrivilege(model.PrivDashboardView), dashHandler.GetFinancialStats)

	// Clients
	protected.Get("/clients", middleware.RequirePrivilege(model.PrivClientView), clientHandler.GetClients)
	protected.Post("/clients", middleware.RequirePrivilege(model.PrivClientCreate), clientHandler.CreateClient)

	// Sales
	protected.Get("/sales", middleware.RequirePrivilege(model.PrivSaleView), saleHandler.GetSales)
	protected.Get("/sales/:id", middleware.RequirePrivilege(model.PrivSaleView), saleHandler.GetSale)
	protected.Post("/sales", middleware.RequirePrivilege(model.PrivSaleCreate), saleHandler.CreateSale)
	protected.Patch("/sales/:id", middleware.RequirePrivilege(model.PrivSaleUpdate), saleHandler.UpdateSale)
	protected.Delete("/sales/:id", middleware.RequirePrivilege(model.PrivSaleDelete), saleHandler.DeleteSale)

	// Payments
	payments := protected.Group("/sales/:id/payments", middleware.RequirePrivilege(model.PrivPaymentManage))
	payments.Post("", paymentHandler.AddPayment)
	payments.Put("/:paymentId", paymentHandler.UpdatePayment)
	payments.Delete("/:paymentId", paymentHandler.DeletePayment)

	// Audit trail and backup
	protected.Get("/audit-logs", middleware.RequirePrivilege(model.PrivAuditView), auditHandler.GetAuditLogs)
	protected.Get("/snapshot", middleware.RequirePrivilege(model.PrivSnapshotExport), snapshotHandler.Export)

	// WebSocket Route
	if d.Hub != nil {
		app.Use("/ws", UpgradeGuard)
		app.Get("/ws", LiveFeed(d.Hub))
	}
}
