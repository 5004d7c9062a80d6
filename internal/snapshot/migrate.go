package snapshot

import (
	"fmt"

	"go-pos-ledger/internal/model"
)

type migration func(doc *Document)

// migrations[i] upgrades a document from version i+1 to i+2.
var migrations = []migration{
	synthesizePayments,
}

// Migrate upgrades doc in place. A missing version is read as 1.
func Migrate(doc *Document) error {
	if doc.Version == 0 {
		doc.Version = 1
	}
	if doc.Version > CurrentVersion {
		return fmt.Errorf("%w: %d (newest known is %d)", ErrUnsupportedVersion, doc.Version, CurrentVersion)
	}
	for doc.Version < CurrentVersion {
		migrations[doc.Version-1](doc)
		doc.Version++
	}
	doc.normalize()
	return nil
}

// synthesizePayments turns the single legacy paymentMethod of a version 1 sale
// into one payment covering the whole total.
func synthesizePayments(doc *Document) {
	for i := range doc.Sales {
		s := &doc.Sales[i]
		if len(s.Payments) > 0 {
			continue
		}

		if s.TotalPrice.IsZero() {
			s.TotalPrice = model.TotalPrice(s.SubTotal, s.Discount)
		}
		s.Payments = []model.SalePayment{}
		if s.TotalPrice.IsPositive() {
			method := s.PaymentMethod
			if method == "" {
				method = model.DefaultPaymentMethod
			}
			s.Payments = append(s.Payments, model.SalePayment{
				ID:     "pay_" + s.ID,
				Amount: s.TotalPrice,
				Method: method,
				Date:   s.Date,
			})
		}
		s.Balance = s.TotalPrice.Sub(s.TotalPaid())
		s.Status = model.StatusPaid
	}
}
