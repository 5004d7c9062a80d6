package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"go-pos-ledger/internal/model"
)

// LogReader serves recent audit entries, newest first.
type LogReader interface {
	Entries() []model.LogEntry
}

type AuditHandler struct {
	logs LogReader
}

func NewAuditHandler(logs LogReader) *AuditHandler {
	return &AuditHandler{logs: logs}
}

// GetAuditLogs lists audit entries
// Query params: category (SALE, STOCK, FINANCE), limit (default 100)
func (h *AuditHandler) GetAuditLogs(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "100"))
	if err != nil || limit <= 0 {
		limit = 100
	}
	category := model.LogCategory(strings.ToUpper(c.Query("category")))

	entries := make([]model.LogEntry, 0, limit)
	for _, e := range h.logs.Entries() {
		if category != "" && e.Category != category {
			continue
		}
		entries = append(entries, e)
		if len(entries) == limit {
			break
		}
	}
	return c.JSON(entries)
}
