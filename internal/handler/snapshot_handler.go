package handler

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"go-pos-ledger/internal/snapshot"
)

type SnapshotHandler struct {
	source snapshot.Exporter
	logger *zap.Logger
}

func NewSnapshotHandler(source snapshot.Exporter, logger *zap.Logger) *SnapshotHandler {
	return &SnapshotHandler{source: source, logger: logger}
}

// Export downloads the whole state as a backup document.
func (h *SnapshotHandler) Export(c *fiber.Ctx) error {
	doc, err := h.source.Snapshot(c.UserContext())
	if err != nil {
		h.logger.Error("snapshot export", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "Failed to export snapshot"})
	}
	raw, err := snapshot.Encode(doc)
	if err != nil {
		h.logger.Error("snapshot encode", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "Failed to export snapshot"})
	}

	name := strings.Join(strings.Fields(doc.ShopName), "_")
	if name == "" {
		name = "ledger"
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s_backup_%s.json"`, name, doc.ExportDate.Format("2006-01-02")))
	return c.Send(raw)
}
