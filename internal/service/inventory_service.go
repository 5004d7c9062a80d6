package service

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"go-pos-ledger/internal/model"
	"go-pos-ledger/internal/repository"
)

const expiryWindow = 30 * 24 * time.Hour

// DashboardStats is the stock overview.
type DashboardStats struct {
	TotalProducts  int             `json:"totalProducts"`
	TotalUnits     int             `json:"totalUnits"`
	LowStockCount  int             `json:"lowStockCount"`
	ExpiredCount   int             `json:"expiredCount"`
	ExpiringSoon   int             `json:"expiringSoon"`
	TotalValuation decimal.Decimal `json:"totalValuation"`
	CostValuation  decimal.Decimal `json:"costValuation"`
}

// SalesMovementData is one day of sales activity for the chart.
type SalesMovementData struct {
	Date      string          `json:"date"`
	Sales     int             `json:"sales"`
	UnitsSold int             `json:"unitsSold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// FinancialStats is the profit report over a period. Stock figures are
// valued at the time of the report.
type FinancialStats struct {
	From                 *time.Time      `json:"from,omitempty"`
	To                   time.Time       `json:"to"`
	SalesCount           int             `json:"salesCount"`
	TotalSales           decimal.Decimal `json:"totalSales"`
	CostOfGoods          decimal.Decimal `json:"costOfGoods"`
	GrossProfit          decimal.Decimal `json:"grossProfit"`
	TotalExpenses        decimal.Decimal `json:"totalExpenses"`
	NetProfit            decimal.Decimal `json:"netProfit"`
	StockValue           decimal.Decimal `json:"stockValue"`
	StockCost            decimal.Decimal `json:"stockCost"`
	PotentialStockProfit decimal.Decimal `json:"potentialStockProfit"`
	ItemsInStock         int             `json:"itemsInStock"`
}

type InventoryService interface {
	GetAllProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	GetLowStock(ctx context.Context) ([]model.Product, error)
	GetDashboardStats(ctx context.Context) (*DashboardStats, error)
	GetSalesMovement(ctx context.Context, days int) ([]SalesMovementData, error)
	GetFinancialStats(ctx context.Context, start, end time.Time) (*FinancialStats, error)
}

type inventoryService struct {
	productRepo repository.ProductRepository
	saleRepo    repository.SaleRepository
	expenses    []model.Expense
	tracer      trace.Tracer
	now         func() time.Time
}

// NewInventoryService builds the read side. Expenses are owned by the back
// office and only feed the financial report.
func NewInventoryService(productRepo repository.ProductRepository, saleRepo repository.SaleRepository, expenses []model.Expense) InventoryService {
	return &inventoryService{
		productRepo: productRepo,
		saleRepo:    saleRepo,
		expenses:    append([]model.Expense(nil), expenses...),
		tracer:      otel.Tracer(tracerName),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *inventoryService) GetAllProducts(ctx context.Context) ([]model.Product, error) {
	_, span := s.tracer.Start(ctx, "inventory.list_products")
	defer span.End()

	return s.productRepo.FindAll()
}

func (s *inventoryService) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	_, span := s.tracer.Start(ctx, "inventory.get_product", trace.WithAttributes(attribute.String("product.id", id)))
	defer span.End()

	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, spanError(span, err)
	}
	return product, nil
}

// GetLowStock lists products at or under their threshold, emptiest first.
func (s *inventoryService) GetLowStock(ctx context.Context) ([]model.Product, error) {
	_, span := s.tracer.Start(ctx, "inventory.low_stock")
	defer span.End()

	products, err := s.productRepo.FindAll()
	if err != nil {
		return nil, spanError(span, err)
	}

	low := make([]model.Product, 0)
	for i := range products {
		if products[i].IsLowStock() {
			low = append(low, products[i])
		}
	}
	sort.SliceStable(low, func(i, j int) bool { return low[i].Quantity < low[j].Quantity })
	return low, nil
}

func (s *inventoryService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	_, span := s.tracer.Start(ctx, "inventory.dashboard_stats")
	defer span.End()

	products, err := s.productRepo.FindAll()
	if err != nil {
		return nil, spanError(span, err)
	}

	now := s.now()
	stats := &DashboardStats{TotalValuation: decimal.Zero, CostValuation: decimal.Zero}
	for i := range products {
		p := &products[i]
		qty := decimal.NewFromInt(int64(p.Quantity))

		stats.TotalProducts++
		stats.TotalUnits += p.Quantity
		stats.TotalValuation = stats.TotalValuation.Add(p.Price.Mul(qty))
		stats.CostValuation = stats.CostValuation.Add(p.PurchasePrice.Mul(qty))
		if p.IsLowStock() {
			stats.LowStockCount++
		}
		if p.HasExpiry() {
			switch expiry := p.ExpirationDate.Time; {
			case expiry.Before(now):
				stats.ExpiredCount++
			case !expiry.After(now.Add(expiryWindow)):
				stats.ExpiringSoon++
			}
		}
	}
	return stats, nil
}

// GetSalesMovement buckets the sales of the last days by UTC calendar day,
// oldest first. Days without sales are omitted.
func (s *inventoryService) GetSalesMovement(ctx context.Context, days int) ([]SalesMovementData, error) {
	_, span := s.tracer.Start(ctx, "inventory.sales_movement", trace.WithAttributes(attribute.Int("days", days)))
	defer span.End()

	if days <= 0 {
		days = 7
	}

	sales, err := s.saleRepo.FindAll()
	if err != nil {
		return nil, spanError(span, err)
	}

	end := s.now()
	start := end.AddDate(0, 0, -days)

	buckets := make(map[string]*SalesMovementData)
	for i := range sales {
		sale := &sales[i]
		if sale.Date.Before(start) || sale.Date.After(end) {
			continue
		}
		key := sale.Date.UTC().Format("2006-01-02")
		b, ok := buckets[key]
		if !ok {
			b = &SalesMovementData{Date: key, Revenue: decimal.Zero}
			buckets[key] = b
		}
		b.Sales++
		b.UnitsSold += sale.Units()
		b.Revenue = b.Revenue.Add(sale.TotalPrice)
	}

	results := make([]SalesMovementData, 0, len(buckets))
	for _, b := range buckets {
		results = append(results, *b)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Date < results[j].Date })
	return results, nil
}

// GetFinancialStats computes revenue, cost of goods sold and profit for sales
// and expenses dated in [start, end]. A zero start means since the first sale.
// Cost uses the current purchase price; lines whose product is gone cost nothing.
func (s *inventoryService) GetFinancialStats(ctx context.Context, start, end time.Time) (*FinancialStats, error) {
	_, span := s.tracer.Start(ctx, "inventory.financial_stats")
	defer span.End()

	if end.IsZero() {
		end = s.now()
	}

	products, err := s.productRepo.FindAll()
	if err != nil {
		return nil, spanError(span, err)
	}
	sales, err := s.saleRepo.FindAll()
	if err != nil {
		return nil, spanError(span, err)
	}

	inRange := func(t time.Time) bool {
		return !t.After(end) && (start.IsZero() || !t.Before(start))
	}

	cost := make(map[string]decimal.Decimal, len(products))
	stats := &FinancialStats{
		To:                   end,
		TotalSales:           decimal.Zero,
		CostOfGoods:          decimal.Zero,
		TotalExpenses:        decimal.Zero,
		StockValue:           decimal.Zero,
		StockCost:            decimal.Zero,
		PotentialStockProfit: decimal.Zero,
	}
	if !start.IsZero() {
		from := start
		stats.From = &from
	}

	for i := range products {
		p := &products[i]
		qty := decimal.NewFromInt(int64(p.Quantity))
		cost[p.ID] = p.PurchasePrice
		stats.ItemsInStock += p.Quantity
		stats.StockValue = stats.StockValue.Add(p.Price.Mul(qty))
		stats.StockCost = stats.StockCost.Add(p.PurchasePrice.Mul(qty))
	}
	stats.PotentialStockProfit = stats.StockValue.Sub(stats.StockCost)

	for i := range sales {
		sale := &sales[i]
		if !inRange(sale.Date) {
			continue
		}
		stats.SalesCount++
		stats.TotalSales = stats.TotalSales.Add(sale.TotalPrice)
		for _, item := range sale.Items {
			stats.CostOfGoods = stats.CostOfGoods.Add(cost[item.ProductID].Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}

	for _, e := range s.expenses {
		// Undated expenses only count towards the all-time report.
		if (e.Date.IsZero() && start.IsZero()) || (!e.Date.IsZero() && inRange(e.Date.Time)) {
			stats.TotalExpenses = stats.TotalExpenses.Add(e.Amount)
		}
	}

	stats.GrossProfit = stats.TotalSales.Sub(stats.CostOfGoods)
	stats.NetProfit = stats.GrossProfit.Sub(stats.TotalExpenses)

	span.SetAttributes(attribute.Int("financial.sales", stats.SalesCount))
	return stats, nil
}
