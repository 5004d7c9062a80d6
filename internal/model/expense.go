package model

import "github.com/shopspring/decimal"

// Expense is a shop outgoing recorded by the back office. The ledger only
// reads expenses for the financial report.
type Expense struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        Date            `json:"date"`
	Category    string          `json:"category,omitempty"`
}
