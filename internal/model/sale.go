package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type SaleStatus string

const (
	StatusPaid    SaleStatus = "PAID"
	StatusPartial SaleStatus = "PARTIAL"
	StatusUnpaid  SaleStatus = "UNPAID"
)

// StatusRule selects how Recompute classifies a sale with money still owed.
type StatusRule int

const (
	// SettleRule yields PAID or PARTIAL. Adding or editing a payment never un-pays a sale.
	SettleRule StatusRule = iota
	// FullRule also yields UNPAID once nothing is left paid. Only payment removal uses it.
	FullRule
)

// SaleItem is one cart line. Price is the unit price at sale time and is never re-rated.
type SaleItem struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

// LineTotal is price times quantity.
func (i SaleItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// SalePayment is one money movement applied against a sale.
type SalePayment struct {
	ID     string          `json:"id"`
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method"`
	Date   time.Time       `json:"date"`
}

// Sale is one checkout. Items are immutable after creation; Balance and
// Status are stored but always rewritten by Recompute.
type Sale struct {
	ID            string          `json:"id"`
	Items         []SaleItem      `json:"items"`
	SubTotal      decimal.Decimal `json:"subTotal"`
	Discount      decimal.Decimal `json:"discount"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	Date          time.Time       `json:"date"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
	Payments      []SalePayment   `json:"payments"`
	Balance       decimal.Decimal `json:"balance"`
	Status        SaleStatus      `json:"status"`
	ClientID      string          `json:"clientId,omitempty"`
	ClientName    string          `json:"clientName,omitempty"`
}

// TotalPaid sums the recorded payments.
func (s *Sale) TotalPaid() decimal.Decimal {
	paid := decimal.Zero
	for _, p := range s.Payments {
		paid = paid.Add(p.Amount)
	}
	return paid
}

// Recompute derives TotalPrice, Balance and Status from SubTotal, Discount
// and the payment list. Calling it twice yields the same result.
func (s *Sale) Recompute(rule StatusRule) {
	s.TotalPrice = TotalPrice(s.SubTotal, s.Discount)
	paid := s.TotalPaid()
	s.Balance = s.TotalPrice.Sub(paid)

	switch {
	case !s.Balance.IsPositive():
		s.Status = StatusPaid
	case rule == FullRule && paid.IsZero():
		s.Status = StatusUnpaid
	default:
		s.Status = StatusPartial
	}
}

// FindPayment returns the index of the payment with the given id, or -1.
func (s *Sale) FindPayment(id string) int {
	for i, p := range s.Payments {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// StockLines lists the quantities this sale holds against each product.
func (s *Sale) StockLines() []StockLine {
	lines := make([]StockLine, 0, len(s.Items))
	for _, item := range s.Items {
		lines = append(lines, StockLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return lines
}

// Units is the number of product units on the sale.
func (s *Sale) Units() int {
	units := 0
	for _, item := range s.Items {
		units += item.Quantity
	}
	return units
}

// Clone returns a deep copy so callers never share slices with the store.
func (s *Sale) Clone() *Sale {
	c := *s
	c.Items = make([]SaleItem, len(s.Items))
	copy(c.Items, s.Items)
	c.Payments = make([]SalePayment, len(s.Payments))
	copy(c.Payments, s.Payments)
	return &c
}
