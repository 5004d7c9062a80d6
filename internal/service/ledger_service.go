package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"go-pos-ledger/internal/audit"
	"go-pos-ledger/internal/model"
	"go-pos-ledger/internal/repository"
	"go-pos-ledger/internal/snapshot"
	"go-pos-ledger/pkg/validator"
)

const tracerName = "go-pos-ledger/internal/service"

// SaleLine is a cart line as submitted. A nil Price is taken from the live
// product; an explicit zero is a free line.
type SaleLine struct {
	ProductID   string           `json:"productId" validate:"required"`
	ProductName string           `json:"productName,omitempty"`
	Quantity    int              `json:"quantity" validate:"gt=0"`
	Price       *decimal.Decimal `json:"price,omitempty" validate:"omitempty,gte=0"`
}

// CreateSaleRequest is a checkout. A zero SubTotal is computed from the
// items. AmountPaid nil or at least the total means the sale is paid in full.
type CreateSaleRequest struct {
	Items         []SaleLine       `json:"items" validate:"required,min=1,dive"`
	SubTotal      decimal.Decimal  `json:"subTotal" validate:"gte=0"`
	Discount      decimal.Decimal  `json:"discount" validate:"gte=0"`
	PaymentMethod string           `json:"paymentMethod" validate:"required"`
	AmountPaid    *decimal.Decimal `json:"amountPaid,omitempty"`
	ClientID      string           `json:"clientId,omitempty"`
	ClientName    string           `json:"clientName,omitempty"`
	Date          *time.Time       `json:"date,omitempty"`
}

// MetadataUpdate edits the non-financial fields of a sale. Nil fields are
// left as they are; an empty ClientID detaches the client.
type MetadataUpdate struct {
	ClientID   *string    `json:"clientId,omitempty"`
	ClientName *string    `json:"clientName,omitempty"`
	Date       *time.Time `json:"date,omitempty"`
}

type ClientBalance struct {
	ClientID    string          `json:"clientId"`
	ClientName  string          `json:"clientName"`
	OpenSales   int             `json:"openSales"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// BalanceSummary aggregates money across all sales.
type BalanceSummary struct {
	SalesCount     int             `json:"salesCount"`
	PaidCount      int             `json:"paidCount"`
	PartialCount   int             `json:"partialCount"`
	UnpaidCount    int             `json:"unpaidCount"`
	TotalSales     decimal.Decimal `json:"totalSales"`
	TotalCollected decimal.Decimal `json:"totalCollected"`
	Outstanding    decimal.Decimal `json:"outstanding"`
	Overpaid       decimal.Decimal `json:"overpaid"`
	Clients        []ClientBalance `json:"clients"`
}

type SaleService interface {
	CreateSale(ctx context.Context, req CreateSaleRequest) (*model.Sale, error)
	DeleteSale(ctx context.Context, saleID string) error
	UpdateMetadata(ctx context.Context, saleID string, upd MetadataUpdate) (*model.Sale, error)
	GetSale(ctx context.Context, saleID string) (*model.Sale, error)
	ListSales(ctx context.Context) ([]model.Sale, error)
	GetBalances(ctx context.Context) (*BalanceSummary, error)
}

// LedgerService is the full command surface over sales, payments and stock.
type LedgerService interface {
	SaleService
	PaymentService
	ClientService
	Snapshot(ctx context.Context) (*snapshot.Document, error)
}

// LogSource supplies the recent audit entries exported with a snapshot.
type LogSource interface {
	Entries() []model.LogEntry
}

// LedgerOptions carries the shop settings exported with the state.
// Extras are written back untouched.
type LedgerOptions struct {
	ShopName       string
	PaymentMethods []model.PaymentMethod
	Logs           LogSource
	Extras         snapshot.Extras
}

type ledgerService struct {
	productRepo repository.ProductRepository
	saleRepo    repository.SaleRepository
	clientRepo  repository.ClientRepository
	recorder    audit.Recorder
	logger      *zap.Logger
	tracer      trace.Tracer
	opts        LedgerOptions

	// state is held shared by commands and exclusively by Snapshot.
	state     sync.RWMutex
	saleLocks *keyedMutex
	now       func() time.Time
}

func NewLedgerService(
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	clientRepo repository.ClientRepository,
	recorder audit.Recorder,
	logger *zap.Logger,
	opts LedgerOptions,
) LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(opts.PaymentMethods) == 0 {
		opts.PaymentMethods = model.DefaultPaymentMethods()
	}
	return &ledgerService{
		productRepo: productRepo,
		saleRepo:    saleRepo,
		clientRepo:  clientRepo,
		recorder:    recorder,
		logger:      logger,
		tracer:      otel.Tracer(tracerName),
		opts:        opts,
		saleLocks:   newKeyedMutex(),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *ledgerService) CreateSale(ctx context.Context, req CreateSaleRequest) (*model.Sale, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.create_sale")
	defer span.End()

	if err := validateCreate(&req); err != nil {
		return nil, spanError(span, err)
	}

	s.state.RLock()
	defer s.state.RUnlock()

	items, err := s.freezeItems(req.Items)
	if err != nil {
		return nil, spanError(span, err)
	}

	clientName, err := s.resolveClient(req.ClientID, req.ClientName)
	if err != nil {
		return nil, spanError(span, err)
	}

	subTotal := req.SubTotal
	if subTotal.IsZero() {
		for _, item := range items {
			subTotal = subTotal.Add(item.LineTotal())
		}
	}

	date := s.now()
	if req.Date != nil && !req.Date.IsZero() {
		date = req.Date.UTC()
	}

	sale := &model.Sale{
		ID:            uuid.NewString(),
		Items:         items,
		SubTotal:      subTotal,
		Discount:      req.Discount,
		Date:          date,
		PaymentMethod: req.PaymentMethod,
		Payments:      []model.SalePayment{},
		ClientID:      req.ClientID,
		ClientName:    clientName,
	}

	total := model.TotalPrice(subTotal, req.Discount)
	paid := total
	if req.AmountPaid != nil && req.AmountPaid.LessThan(total) {
		paid = *req.AmountPaid
	}
	// A fully discounted sale moves no money and carries no payment.
	if paid.IsPositive() {
		sale.Payments = append(sale.Payments, model.SalePayment{
			ID:     uuid.NewString(),
			Amount: paid,
			Method: req.PaymentMethod,
			Date:   date,
		})
	}
	sale.Recompute(model.SettleRule)

	if err := s.productRepo.DecrementAll(sale.StockLines()); err != nil {
		return nil, spanError(span, err)
	}
	if err := s.saleRepo.Save(sale); err != nil {
		if restoreErr := s.productRepo.RestoreAll(sale.StockLines()); restoreErr != nil {
			s.logger.Error("failed to compensate stock after sale save error",
				zap.String("sale_id", sale.ID),
				zap.Error(restoreErr),
			)
		}
		return nil, spanError(span, err)
	}

	span.SetAttributes(
		attribute.String("sale.id", sale.ID),
		attribute.String("sale.status", string(sale.Status)),
		attribute.Int("sale.units", sale.Units()),
	)

	msg := fmt.Sprintf("Sale recorded: %s (%d items) - payment: %s", sale.TotalPrice, len(sale.Items), sale.PaymentMethod)
	if sale.Status == model.StatusPartial {
		msg += fmt.Sprintf(" (partial - balance due: %s)", sale.Balance)
	}
	s.recorder.Record(ctx, model.LogSale, msg)

	s.logger.Info("sale created", zap.String("sale_id", sale.ID), zap.String("total", sale.TotalPrice.String()))
	return sale, nil
}

func (s *ledgerService) DeleteSale(ctx context.Context, saleID string) error {
	ctx, span := s.tracer.Start(ctx, "ledger.delete_sale", trace.WithAttributes(attribute.String("sale.id", saleID)))
	defer span.End()

	s.state.RLock()
	defer s.state.RUnlock()
	unlock := s.saleLocks.Lock(saleID)
	defer unlock()

	sale, err := s.saleRepo.FindByID(saleID)
	if err != nil {
		return spanError(span, err)
	}

	// Stock comes back first; a sale whose stock cannot be restored is kept.
	if err := s.productRepo.RestoreAll(sale.StockLines()); err != nil {
		return spanError(span, fmt.Errorf("%w: restore stock for sale %s: %w", ErrNotCancellable, saleID, err))
	}
	if err := s.saleRepo.Delete(saleID); err != nil {
		if undoErr := s.productRepo.DecrementAll(sale.StockLines()); undoErr != nil {
			s.logger.Error("failed to undo stock restore after delete error",
				zap.String("sale_id", saleID),
				zap.Error(undoErr),
			)
		}
		return spanError(span, err)
	}

	s.recorder.Record(ctx, model.LogSale,
		fmt.Sprintf("Sale cancelled: %s (stock restored: %d units)", sale.TotalPrice, sale.Units()))
	return nil
}

func (s *ledgerService) UpdateMetadata(ctx context.Context, saleID string, upd MetadataUpdate) (*model.Sale, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.update_metadata", trace.WithAttributes(attribute.String("sale.id", saleID)))
	defer span.End()

	s.state.RLock()
	defer s.state.RUnlock()
	unlock := s.saleLocks.Lock(saleID)
	defer unlock()

	sale, err := s.saleRepo.FindByID(saleID)
	if err != nil {
		return nil, spanError(span, err)
	}

	var changes []string

	if upd.ClientID != nil || upd.ClientName != nil {
		clientID := sale.ClientID
		if upd.ClientID != nil {
			clientID = *upd.ClientID
		}
		name := ""
		if upd.ClientName != nil {
			name = *upd.ClientName
		} else if clientID == sale.ClientID {
			name = sale.ClientName
		}
		// The attached client was accepted when the sale was made; only a
		// newly attached one is checked against the registry.
		if clientID != sale.ClientID || name == "" {
			name, err = s.resolveClient(clientID, name)
			if err != nil {
				return nil, spanError(span, err)
			}
		}
		if clientID != sale.ClientID || name != sale.ClientName {
			changes = append(changes, fmt.Sprintf("client (%s -> %s)", orNone(sale.ClientName), orNone(name)))
			sale.ClientID = clientID
			sale.ClientName = name
		}
	}

	if upd.Date != nil && !upd.Date.IsZero() && !upd.Date.Equal(sale.Date) {
		sale.Date = upd.Date.UTC()
		changes = append(changes, "date changed")
	}

	if len(changes) > 0 {
		if err := s.saleRepo.Save(sale); err != nil {
			return nil, spanError(span, err)
		}
	}

	changeMsg := "no changes"
	if len(changes) > 0 {
		changeMsg = strings.Join(changes, ", ")
	}
	s.recorder.Record(ctx, model.LogSale, fmt.Sprintf("Sale edited (%s): %s", sale.TotalPrice, changeMsg))
	return sale, nil
}

func (s *ledgerService) GetSale(ctx context.Context, saleID string) (*model.Sale, error) {
	_, span := s.tracer.Start(ctx, "ledger.get_sale", trace.WithAttributes(attribute.String("sale.id", saleID)))
	defer span.End()

	sale, err := s.saleRepo.FindByID(saleID)
	if err != nil {
		return nil, spanError(span, err)
	}
	return sale, nil
}

func (s *ledgerService) ListSales(ctx context.Context) ([]model.Sale, error) {
	_, span := s.tracer.Start(ctx, "ledger.list_sales")
	defer span.End()

	return s.saleRepo.FindAll()
}

func (s *ledgerService) GetBalances(ctx context.Context) (*BalanceSummary, error) {
	_, span := s.tracer.Start(ctx, "ledger.get_balances")
	defer span.End()

	sales, err := s.saleRepo.FindAll()
	if err != nil {
		return nil, spanError(span, err)
	}
	return summarize(sales), nil
}

func summarize(sales []model.Sale) *BalanceSummary {
	sum := &BalanceSummary{
		TotalSales:     decimal.Zero,
		TotalCollected: decimal.Zero,
		Outstanding:    decimal.Zero,
		Overpaid:       decimal.Zero,
		Clients:        []ClientBalance{},
	}
	perClient := make(map[string]*ClientBalance)

	for i := range sales {
		sale := &sales[i]
		sum.SalesCount++
		switch sale.Status {
		case model.StatusPaid:
			sum.PaidCount++
		case model.StatusPartial:
			sum.PartialCount++
		case model.StatusUnpaid:
			sum.UnpaidCount++
		}
		sum.TotalSales = sum.TotalSales.Add(sale.TotalPrice)
		sum.TotalCollected = sum.TotalCollected.Add(sale.TotalPaid())

		switch {
		case sale.Balance.IsPositive():
			sum.Outstanding = sum.Outstanding.Add(sale.Balance)
			if sale.ClientID == "" {
				continue
			}
			cb, ok := perClient[sale.ClientID]
			if !ok {
				cb = &ClientBalance{ClientID: sale.ClientID, ClientName: sale.ClientName, Outstanding: decimal.Zero}
				perClient[sale.ClientID] = cb
			}
			cb.OpenSales++
			cb.Outstanding = cb.Outstanding.Add(sale.Balance)
		case sale.Balance.IsNegative():
			sum.Overpaid = sum.Overpaid.Sub(sale.Balance)
		}
	}

	for _, cb := range perClient {
		sum.Clients = append(sum.Clients, *cb)
	}
	sort.Slice(sum.Clients, func(i, j int) bool {
		if !sum.Clients[i].Outstanding.Equal(sum.Clients[j].Outstanding) {
			return sum.Clients[i].Outstanding.GreaterThan(sum.Clients[j].Outstanding)
		}
		return sum.Clients[i].ClientID < sum.Clients[j].ClientID
	})
	return sum
}

// Snapshot exports the whole state. It waits for in-flight commands and
// blocks new ones, so stock and sales are read at the same instant.
func (s *ledgerService) Snapshot(ctx context.Context) (*snapshot.Document, error) {
	_, span := s.tracer.Start(ctx, "ledger.snapshot")
	defer span.End()

	s.state.Lock()
	defer s.state.Unlock()

	products, err := s.productRepo.FindAll()
	if err != nil {
		return nil, spanError(span, err)
	}
	sales, err := s.saleRepo.FindAll()
	if err != nil {
		return nil, spanError(span, err)
	}
	clients, err := s.clientRepo.FindAll()
	if err != nil {
		return nil, spanError(span, err)
	}

	doc := snapshot.Empty(s.opts.ShopName)
	doc.ExportDate = s.now()
	doc.Products = products
	doc.Sales = sales
	doc.Clients = clients
	doc.PaymentMethods = append([]model.PaymentMethod(nil), s.opts.PaymentMethods...)
	doc.Extras = s.opts.Extras
	if s.opts.Logs != nil {
		doc.Logs = s.opts.Logs.Entries()
	}

	span.SetAttributes(attribute.Int("snapshot.sales", len(sales)), attribute.Int("snapshot.products", len(products)))
	return doc, nil
}

// freezeItems turns the cart into sale lines, filling a missing price or
// name from the live product. After this the lines never change.
func (s *ledgerService) freezeItems(in []SaleLine) ([]model.SaleItem, error) {
	items := make([]model.SaleItem, len(in))
	for i, line := range in {
		item := model.SaleItem{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
		}
		if line.Price != nil {
			item.Price = *line.Price
		}
		if item.ProductName == "" || line.Price == nil {
			product, err := s.productRepo.FindByID(line.ProductID)
			if err != nil {
				return nil, fmt.Errorf("%w: %s", err, line.ProductID)
			}
			if item.ProductName == "" {
				item.ProductName = product.Name
			}
			if line.Price == nil {
				item.Price = product.Price
			}
		}
		items[i] = item
	}
	return items, nil
}

// resolveClient checks clientID against the registry and returns the name
// to store: the given one, else the registered one. Without a clientID the
// name is a walk-in label.
func (s *ledgerService) resolveClient(clientID, name string) (string, error) {
	if clientID == "" {
		return name, nil
	}
	client, err := s.clientRepo.FindByID(clientID)
	if errors.Is(err, repository.ErrClientNotFound) {
		return "", fmt.Errorf("%w: unknown client %s", ErrInvalidRequest, clientID)
	}
	if err != nil {
		return "", err
	}
	if name != "" {
		return name, nil
	}
	return client.Name, nil
}

func validateCreate(req *CreateSaleRequest) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		switch {
		case strings.HasSuffix(first.FailedField, ".Quantity"):
			return fmt.Errorf("%w: %s", ErrInvalidQuantity, first)
		case strings.HasSuffix(first.FailedField, ".Price"),
			strings.HasSuffix(first.FailedField, ".SubTotal"),
			strings.HasSuffix(first.FailedField, ".Discount"):
			return fmt.Errorf("%w: %s", ErrInvalidAmount, first)
		default:
			return fmt.Errorf("%w: %s", ErrInvalidRequest, first)
		}
	}
	if req.AmountPaid != nil && !req.AmountPaid.IsPositive() {
		return fmt.Errorf("%w: amount paid must be greater than zero", ErrInvalidAmount)
	}
	return nil
}

func spanError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func orNone(name string) string {
	if name == "" {
		return "none"
	}
	return name
}

func shortRef(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
