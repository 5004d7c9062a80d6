package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"go-pos-ledger/internal/audit"
	"go-pos-ledger/internal/model"
	"go-pos-ledger/internal/repository"
	"go-pos-ledger/internal/service"
	"go-pos-ledger/pkg/jwt"
)

type testServer struct {
	app      *fiber.App
	products repository.ProductRepository
	sales    repository.SaleRepository
	memory   *audit.MemorySink
	recorder *audit.Dispatcher
	tokens   map[string]string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zaptest.NewLogger(t)

	products := repository.NewProductRepo([]model.Product{
		{ID: "p1", Name: "Robe wax", Price: decimal.NewFromInt(5000), Quantity: 10, MinThreshold: 2},
		{ID: "p2", Name: "Sac", Price: decimal.NewFromInt(2500), Quantity: 1, MinThreshold: 3},
	})
	sales := repository.NewSaleRepo(nil)
	clients := repository.NewClientRepo(nil)

	memory := audit.NewMemorySink(100)
	dispatcher := audit.NewDispatcher(logger, 64, memory)
	t.Cleanup(func() { _ = dispatcher.Close(context.Background()) })

	ledger := service.NewLedgerService(products, sales, clients, dispatcher, logger, service.LedgerOptions{ShopName: "Boutique Awa"})
	issuer := jwt.NewIssuer("test-secret", time.Hour)

	app := fiber.New()
	SetupRoutes(app, Deps{
		Ledger:    ledger,
		Inventory: service.NewInventoryService(products, sales, []model.Expense{{ID: "e1", Amount: decimal.NewFromInt(1000)}}),
		Logs:      memory,
		Issuer:    issuer,
		Logger:    logger,
	})

	tokens := map[string]string{}
	for _, role := range []string{model.RoleAdmin, model.RoleManager, model.RoleCashier} {
		token, err := issuer.GenerateToken("", strings.ToLower(role), role)
		require.NoError(t, err)
		tokens[role] = token
	}

	return &testServer{app: app, products: products, sales: sales, memory: memory, recorder: dispatcher, tokens: tokens}
}

func (s *testServer) do(t *testing.T, role, method, path, body string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", "Bearer "+s.tokens[role])
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

type saleEnvelope struct {
	Data model.Sale `json:"data"`
}

func decodeSale(t *testing.T, raw []byte) model.Sale {
	t.Helper()
	var env saleEnvelope
	require.NoError(t, json.Unmarshal(raw, &env))
	return env.Data
}

func TestHealthIsPublic(t *testing.T) {
	s := newTestServer(t)
	status, _ := s.do(t, "", http.MethodGet, "/api/v1/health", "")
	assert.Equal(t, 200, status)

	status, _ = s.do(t, "", http.MethodGet, "/api/v1/sales", "")
	assert.Equal(t, 401, status)
}

func TestSaleLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)

	status, raw := s.do(t, model.RoleCashier, http.MethodPost, "/api/v1/sales",
		`{"items":[{"productId":"p1","quantity":2}],"paymentMethod":"Wave","amountPaid":4000}`)
	require.Equal(t, 201, status, string(raw))
	sale := decodeSale(t, raw)
	assert.Equal(t, model.StatusPartial, sale.Status)
	assert.True(t, decimal.NewFromInt(6000).Equal(sale.Balance))
	assert.Contains(t, string(raw), `"balance":6000`)

	status, raw = s.do(t, model.RoleCashier, http.MethodPost, "/api/v1/sales/"+sale.ID+"/payments",
		`{"amount":6000,"method":"OM"}`)
	require.Equal(t, 201, status, string(raw))
	sale = decodeSale(t, raw)
	assert.Equal(t, model.StatusPaid, sale.Status)
	require.Len(t, sale.Payments, 2)

	status, raw = s.do(t, model.RoleCashier, http.MethodPut, "/api/v1/sales/"+sale.ID+"/payments/"+sale.Payments[1].ID,
		`{"amount":1000}`)
	require.Equal(t, 200, status, string(raw))
	sale = decodeSale(t, raw)
	assert.Equal(t, model.StatusPartial, sale.Status)
	assert.Equal(t, "OM", sale.Payments[1].Method)

	status, raw = s.do(t, model.RoleCashier, http.MethodDelete, "/api/v1/sales/"+sale.ID+"/payments/"+sale.Payments[0].ID, "")
	require.Equal(t, 200, status, string(raw))
	sale = decodeSale(t, raw)
	assert.True(t, decimal.NewFromInt(9000).Equal(sale.Balance))

	status, raw = s.do(t, model.RoleManager, http.MethodPatch, "/api/v1/sales/"+sale.ID,
		`{"clientName":"Awa"}`)
	require.Equal(t, 200, status, string(raw))
	assert.Equal(t, "Awa", decodeSale(t, raw).ClientName)

	status, _ = s.do(t, model.RoleCashier, http.MethodDelete, "/api/v1/sales/"+sale.ID, "")
	assert.Equal(t, 403, status)

	status, _ = s.do(t, model.RoleManager, http.MethodDelete, "/api/v1/sales/"+sale.ID, "")
	assert.Equal(t, 200, status)

	p, err := s.products.FindByID("p1")
	require.NoError(t, err)
	assert.Equal(t, 10, p.Quantity)

	status, _ = s.do(t, model.RoleManager, http.MethodGet, "/api/v1/sales/"+sale.ID, "")
	assert.Equal(t, 404, status)

	require.NoError(t, s.recorder.Close(context.Background()))
	entries := s.memory.Entries()
	require.Len(t, entries, 6)
	assert.Equal(t, "manager", entries[0].User)
	assert.Equal(t, "cashier", entries[5].User)
}

func TestErrorMapping(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"bad json", http.MethodPost, "/api/v1/sales", `{"items":`, 400},
		{"zero quantity", http.MethodPost, "/api/v1/sales", `{"items":[{"productId":"p1","quantity":0}],"paymentMethod":"Wave"}`, 400},
		{"zero amount paid", http.MethodPost, "/api/v1/sales", `{"items":[{"productId":"p1","quantity":1}],"paymentMethod":"Wave","amountPaid":0}`, 400},
		{"unknown product", http.MethodPost, "/api/v1/sales", `{"items":[{"productId":"zz","quantity":1}],"paymentMethod":"Wave"}`, 404},
		{"insufficient stock", http.MethodPost, "/api/v1/sales", `{"items":[{"productId":"p2","quantity":3}],"paymentMethod":"Wave"}`, 409},
		{"unknown sale payment", http.MethodPost, "/api/v1/sales/nope/payments", `{"amount":100,"method":"Wave"}`, 404},
		{"unknown sale", http.MethodGet, "/api/v1/sales/nope", "", 404},
		{"unknown product read", http.MethodGet, "/api/v1/products/nope", "", 404},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, raw := s.do(t, model.RoleAdmin, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, status, string(raw))
			assert.Contains(t, string(raw), `"error"`)
		})
	}

	p, err := s.products.FindByID("p2")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Quantity)
}

func TestReadEndpoints(t *testing.T) {
	s := newTestServer(t)

	status, raw := s.do(t, model.RoleCashier, http.MethodPost, "/api/v1/sales",
		`{"items":[{"productId":"p1","quantity":1}],"paymentMethod":"Wave","amountPaid":1000}`)
	require.Equal(t, 201, status, string(raw))

	status, raw = s.do(t, model.RoleCashier, http.MethodGet, "/api/v1/products/low-stock", "")
	require.Equal(t, 200, status)
	var low []model.Product
	require.NoError(t, json.Unmarshal(raw, &low))
	require.Len(t, low, 1)
	assert.Equal(t, "p2", low[0].ID)

	status, _ = s.do(t, model.RoleCashier, http.MethodGet, "/api/v1/dashboard/stats", "")
	assert.Equal(t, 403, status)

	status, raw = s.do(t, model.RoleManager, http.MethodGet, "/api/v1/dashboard/balances", "")
	require.Equal(t, 200, status)
	var balances service.BalanceSummary
	require.NoError(t, json.Unmarshal(raw, &balances))
	assert.Equal(t, 1, balances.PartialCount)
	assert.True(t, decimal.NewFromInt(4000).Equal(balances.Outstanding))

	status, raw = s.do(t, model.RoleManager, http.MethodGet, "/api/v1/dashboard/sales-movement?days=3", "")
	require.Equal(t, 200, status)
	assert.Contains(t, string(raw), `"period":3`)

	status, _ = s.do(t, model.RoleManager, http.MethodGet, "/api/v1/audit-logs", "")
	assert.Equal(t, 403, status)

	require.Eventually(t, func() bool { return len(s.memory.Entries()) == 1 }, 2*time.Second, 5*time.Millisecond)
	status, raw = s.do(t, model.RoleAdmin, http.MethodGet, "/api/v1/audit-logs?category=sale", "")
	require.Equal(t, 200, status)
	var logs []model.LogEntry
	require.NoError(t, json.Unmarshal(raw, &logs))
	require.Len(t, logs, 1)
	assert.Equal(t, model.LogSale, logs[0].Category)
}

func TestSnapshotExport(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(t, model.RoleManager, http.MethodGet, "/api/v1/snapshot", "")
	assert.Equal(t, 403, status)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/snapshot", nil)
	req.Header.Set("Authorization", "Bearer "+s.tokens[model.RoleAdmin])
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "Boutique_Awa_backup_")

	var doc map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.EqualValues(t, 2, doc["version"])
	assert.Len(t, doc["products"], 2)
}

func TestClientRoutes(t *testing.T) {
	s := newTestServer(t)

	status, raw := s.do(t, model.RoleCashier, http.MethodPost, "/api/v1/clients", `{"name":"Fatou Sow","phone":"770000000"}`)
	require.Equal(t, 201, status, string(raw))
	var created struct {
		Data model.Client `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &created))
	require.NotEmpty(t, created.Data.ID)

	status, raw = s.do(t, model.RoleCashier, http.MethodPost, "/api/v1/clients", `{"name":""}`)
	assert.Equal(t, 400, status, string(raw))

	status, raw = s.do(t, model.RoleCashier, http.MethodGet, "/api/v1/clients", "")
	require.Equal(t, 200, status)
	var clients []model.Client
	require.NoError(t, json.Unmarshal(raw, &clients))
	require.Len(t, clients, 1)
	assert.Equal(t, "Fatou Sow", clients[0].Name)

	status, raw = s.do(t, model.RoleCashier, http.MethodPost, "/api/v1/sales",
		`{"items":[{"productId":"p1","quantity":1}],"paymentMethod":"Wave","clientId":"`+created.Data.ID+`"}`)
	require.Equal(t, 201, status, string(raw))
	assert.Equal(t, "Fatou Sow", decodeSale(t, raw).ClientName)

	status, _ = s.do(t, model.RoleCashier, http.MethodPost, "/api/v1/sales",
		`{"items":[{"productId":"p1","quantity":1}],"paymentMethod":"Wave","clientId":"nobody","clientName":"X"}`)
	assert.Equal(t, 400, status)

	require.Eventually(t, func() bool { return len(s.memory.Entries()) == 2 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, model.LogClient, s.memory.Entries()[1].Category)
}

func TestFinancialStatsRoute(t *testing.T) {
	s := newTestServer(t)

	status, raw := s.do(t, model.RoleCashier, http.MethodPost, "/api/v1/sales",
		`{"items":[{"productId":"p1","quantity":2}],"paymentMethod":"Wave"}`)
	require.Equal(t, 201, status, string(raw))

	status, _ = s.do(t, model.RoleCashier, http.MethodGet, "/api/v1/dashboard/financial", "")
	assert.Equal(t, 403, status)

	status, raw = s.do(t, model.RoleManager, http.MethodGet, "/api/v1/dashboard/financial", "")
	require.Equal(t, 200, status, string(raw))
	var stats service.FinancialStats
	require.NoError(t, json.Unmarshal(raw, &stats))
	assert.Equal(t, 1, stats.SalesCount)
	assert.True(t, decimal.NewFromInt(10000).Equal(stats.TotalSales))
	assert.True(t, decimal.NewFromInt(1000).Equal(stats.TotalExpenses))
	assert.True(t, decimal.NewFromInt(9000).Equal(stats.NetProfit))

	status, raw = s.do(t, model.RoleManager, http.MethodGet, "/api/v1/dashboard/financial?range=7d", "")
	require.Equal(t, 200, status, string(raw))
	assert.Contains(t, string(raw), `"from"`)

	status, _ = s.do(t, model.RoleManager, http.MethodGet, "/api/v1/dashboard/financial?range=2w", "")
	assert.Equal(t, 400, status)
}

func TestDeleteSaleOfRemovedProductConflicts(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.sales.Save(&model.Sale{
		ID:         "legacy",
		Items:      []model.SaleItem{{ProductID: "gone", Quantity: 1, Price: decimal.NewFromInt(3000)}},
		TotalPrice: decimal.NewFromInt(3000),
		Payments:   []model.SalePayment{},
		Balance:    decimal.NewFromInt(3000),
		Status:     model.StatusUnpaid,
	}))

	status, raw := s.do(t, model.RoleManager, http.MethodDelete, "/api/v1/sales/legacy", "")
	assert.Equal(t, 409, status, string(raw))

	status, _ = s.do(t, model.RoleManager, http.MethodGet, "/api/v1/sales/legacy", "")
	assert.Equal(t, 200, status)
}
