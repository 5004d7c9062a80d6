package model

import "github.com/shopspring/decimal"

func init() {
	// Snapshot documents carry amounts as bare JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// TotalPrice is the amount owed for a cart: subTotal minus discount, never below zero.
func TotalPrice(subTotal, discount decimal.Decimal) decimal.Decimal {
	total := subTotal.Sub(discount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}
