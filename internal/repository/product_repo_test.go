package repository

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-pos-ledger/internal/model"
)

func seedProducts() []model.Product {
	return []model.Product{
		{ID: "p1", Name: "Serum", Price: decimal.NewFromInt(15000), Quantity: 12, MinThreshold: 5},
		{ID: "p2", Name: "Scarf", Price: decimal.NewFromInt(5000), Quantity: 2, MinThreshold: 3},
	}
}

func quantityOf(t *testing.T, repo ProductRepository, id string) int {
	t.Helper()
	p, err := repo.FindByID(id)
	require.NoError(t, err)
	return p.Quantity
}

func TestDecrementAll(t *testing.T) {
	repo := NewProductRepo(seedProducts())

	err := repo.DecrementAll([]model.StockLine{{ProductID: "p1", Quantity: 3}, {ProductID: "p2", Quantity: 2}})
	require.NoError(t, err)

	assert.Equal(t, 9, quantityOf(t, repo, "p1"))
	assert.Equal(t, 0, quantityOf(t, repo, "p2"))
}

func TestDecrementAllIsAllOrNothing(t *testing.T) {
	tests := []struct {
		name    string
		lines   []model.StockLine
		wantErr error
	}{
		{"second line short", []model.StockLine{{ProductID: "p1", Quantity: 3}, {ProductID: "p2", Quantity: 3}}, ErrInsufficientStock},
		{"same product split over lines", []model.StockLine{{ProductID: "p2", Quantity: 1}, {ProductID: "p1", Quantity: 1}, {ProductID: "p2", Quantity: 2}}, ErrInsufficientStock},
		{"unknown product", []model.StockLine{{ProductID: "p1", Quantity: 1}, {ProductID: "ghost", Quantity: 1}}, ErrProductNotFound},
		{"zero quantity", []model.StockLine{{ProductID: "p1", Quantity: 1}, {ProductID: "p2", Quantity: 0}}, ErrInvalidQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewProductRepo(seedProducts())

			err := repo.DecrementAll(tt.lines)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 12, quantityOf(t, repo, "p1"))
			assert.Equal(t, 2, quantityOf(t, repo, "p2"))
		})
	}
}

func TestRestoreAll(t *testing.T) {
	repo := NewProductRepo(seedProducts())

	require.NoError(t, repo.RestoreAll([]model.StockLine{{ProductID: "p1", Quantity: 2}, {ProductID: "p1", Quantity: 1}}))
	assert.Equal(t, 15, quantityOf(t, repo, "p1"))

	err := repo.RestoreAll([]model.StockLine{{ProductID: "p2", Quantity: 4}, {ProductID: "ghost", Quantity: 1}})
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Equal(t, 2, quantityOf(t, repo, "p2"))
}

func TestConcurrentDecrementNeverOversells(t *testing.T) {
	repo := NewProductRepo([]model.Product{{ID: "p1", Name: "Serum", Quantity: 10}})

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.DecrementAll([]model.StockLine{{ProductID: "p1", Quantity: 1}}); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	assert.Equal(t, 0, quantityOf(t, repo, "p1"))
}

func TestFindReturnsCopies(t *testing.T) {
	repo := NewProductRepo(seedProducts())

	p, err := repo.FindByID("p1")
	require.NoError(t, err)
	p.Quantity = 100

	all, err := repo.FindAll()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "p1", all[0].ID)
	assert.Equal(t, 12, all[0].Quantity)

	_, err = repo.FindByID("ghost")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestNewProductRepoClampsNegativeStock(t *testing.T) {
	repo := NewProductRepo([]model.Product{{ID: "p1", Quantity: -4}})
	assert.Equal(t, 0, quantityOf(t, repo, "p1"))
}
