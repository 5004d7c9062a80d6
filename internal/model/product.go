package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Product is the stock-carrying catalogue entry a SaleItem points at.
// Quantity only moves through the inventory store's decrement/restore.
// Image, Size and CustomAttributes belong to the catalogue and are carried as read.
type Product struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	CategoryID       string          `json:"categoryId,omitempty"`
	CategoryName     string          `json:"categoryName,omitempty"`
	Price            decimal.Decimal `json:"price"`
	PurchasePrice    decimal.Decimal `json:"purchasePrice"`
	Quantity         int             `json:"quantity"`
	MinThreshold     int             `json:"minThreshold"`
	ExpirationDate   *Date           `json:"expirationDate,omitempty"`
	Size             string          `json:"size,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	Image            string          `json:"image,omitempty"`
	Barcode          string          `json:"barcode,omitempty"`
	CustomAttributes json.RawMessage `json:"customAttributes,omitempty"`
}

// IsLowStock reports whether the product reached its restock threshold.
func (p *Product) IsLowStock() bool {
	return p.Quantity <= p.MinThreshold
}

// HasExpiry reports whether an expiration day is set.
func (p *Product) HasExpiry() bool {
	return p.ExpirationDate != nil && !p.ExpirationDate.IsZero()
}

// StockLine is one quantity movement against a product.
type StockLine struct {
	ProductID string
	Quantity  int
}
