package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"go-pos-ledger/internal/model"
)

// PaymentRequest adds money against an open sale. A zero Date means now.
type PaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method" validate:"required"`
	Date   *time.Time      `json:"date,omitempty"`
}

// PaymentUpdate replaces a recorded payment. Empty Method and nil Date keep
// the previous values.
type PaymentUpdate struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method,omitempty"`
	Date   *time.Time      `json:"date,omitempty"`
}

type PaymentService interface {
	AddPayment(ctx context.Context, saleID string, req PaymentRequest) (*model.Sale, error)
	DeletePayment(ctx context.Context, saleID, paymentID string) (*model.Sale, error)
	UpdatePayment(ctx context.Context, saleID, paymentID string, upd PaymentUpdate) (*model.Sale, error)
}

func (s *ledgerService) AddPayment(ctx context.Context, saleID string, req PaymentRequest) (*model.Sale, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.add_payment", trace.WithAttributes(attribute.String("sale.id", saleID)))
	defer span.End()

	if !req.Amount.IsPositive() {
		return nil, spanError(span, fmt.Errorf("%w: payment must be greater than zero", ErrInvalidAmount))
	}
	if req.Method == "" {
		return nil, spanError(span, fmt.Errorf("%w: payment method is required", ErrInvalidRequest))
	}

	payment := model.SalePayment{
		ID:     uuid.NewString(),
		Amount: req.Amount,
		Method: req.Method,
		Date:   s.now(),
	}
	if req.Date != nil && !req.Date.IsZero() {
		payment.Date = req.Date.UTC()
	}

	sale, err := s.mutateSale(saleID, func(sale *model.Sale) error {
		sale.Payments = append(sale.Payments, payment)
		sale.Recompute(model.SettleRule)
		return nil
	})
	if err != nil {
		return nil, spanError(span, err)
	}

	span.SetAttributes(attribute.String("payment.id", payment.ID), attribute.String("sale.status", string(sale.Status)))
	s.recorder.Record(ctx, model.LogFinance,
		fmt.Sprintf("Payment added on sale #%s: +%s (%s)", shortRef(sale.ID), payment.Amount, payment.Method))
	return sale, nil
}

func (s *ledgerService) DeletePayment(ctx context.Context, saleID, paymentID string) (*model.Sale, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.delete_payment", trace.WithAttributes(
		attribute.String("sale.id", saleID),
		attribute.String("payment.id", paymentID),
	))
	defer span.End()

	var removed model.SalePayment
	sale, err := s.mutateSale(saleID, func(sale *model.Sale) error {
		idx := sale.FindPayment(paymentID)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrUnknownPayment, paymentID)
		}
		removed = sale.Payments[idx]
		sale.Payments = append(sale.Payments[:idx], sale.Payments[idx+1:]...)
		sale.Recompute(model.FullRule)
		return nil
	})
	if err != nil {
		return nil, spanError(span, err)
	}

	s.recorder.Record(ctx, model.LogFinance,
		fmt.Sprintf("Payment removed on sale #%s: -%s", shortRef(sale.ID), removed.Amount))
	return sale, nil
}

func (s *ledgerService) UpdatePayment(ctx context.Context, saleID, paymentID string, upd PaymentUpdate) (*model.Sale, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.update_payment", trace.WithAttributes(
		attribute.String("sale.id", saleID),
		attribute.String("payment.id", paymentID),
	))
	defer span.End()

	if !upd.Amount.IsPositive() {
		return nil, spanError(span, fmt.Errorf("%w: payment must be greater than zero", ErrInvalidAmount))
	}

	var before, after model.SalePayment
	sale, err := s.mutateSale(saleID, func(sale *model.Sale) error {
		idx := sale.FindPayment(paymentID)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrUnknownPayment, paymentID)
		}
		before = sale.Payments[idx]
		after = before
		after.Amount = upd.Amount
		if upd.Method != "" {
			after.Method = upd.Method
		}
		if upd.Date != nil && !upd.Date.IsZero() {
			after.Date = upd.Date.UTC()
		}
		sale.Payments[idx] = after
		sale.Recompute(model.SettleRule)
		return nil
	})
	if err != nil {
		return nil, spanError(span, err)
	}

	s.recorder.Record(ctx, model.LogFinance,
		fmt.Sprintf("Payment updated on sale #%s: %s -> %s (%s)", shortRef(sale.ID), before.Amount, after.Amount, after.Method))
	return sale, nil
}

// mutateSale runs fn on a private copy of the sale under its lock and
// stores the result only when fn succeeds.
func (s *ledgerService) mutateSale(saleID string, fn func(sale *model.Sale) error) (*model.Sale, error) {
	s.state.RLock()
	defer s.state.RUnlock()
	unlock := s.saleLocks.Lock(saleID)
	defer unlock()

	sale, err := s.saleRepo.FindByID(saleID)
	if err != nil {
		return nil, err
	}
	if err := fn(sale); err != nil {
		return nil, err
	}
	if err := s.saleRepo.Save(sale); err != nil {
		return nil, err
	}
	return sale, nil
}
