package repository

import (
	"errors"
	"sort"
	"sync"

	"go-pos-ledger/internal/model"
)

var (
	ErrSaleNotFound = errors.New("sale not found")
	ErrEmptyID      = errors.New("empty sale ID")
)

// SaleRepository stores sales by value: every read returns a copy and every
// write stores one, so a failed command never leaves a half-edited sale behind.
type SaleRepository interface {
	FindAll() ([]model.Sale, error)
	FindByID(id string) (*model.Sale, error)
	Save(sale *model.Sale) error
	Delete(id string) error
}

type saleRepo struct {
	mu    sync.RWMutex
	sales map[string]*model.Sale
}

func NewSaleRepo(sales []model.Sale) SaleRepository {
	r := &saleRepo{sales: make(map[string]*model.Sale, len(sales))}
	for i := range sales {
		r.sales[sales[i].ID] = sales[i].Clone()
	}
	return r
}

// FindAll returns every sale, newest first.
func (r *saleRepo) FindAll() ([]model.Sale, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sales := make([]model.Sale, 0, len(r.sales))
	for _, s := range r.sales {
		sales = append(sales, *s.Clone())
	}
	sort.SliceStable(sales, func(i, j int) bool {
		if sales[i].Date.Equal(sales[j].Date) {
			return sales[i].ID > sales[j].ID
		}
		return sales[i].Date.After(sales[j].Date)
	})
	return sales, nil
}

func (r *saleRepo) FindByID(id string) (*model.Sale, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sales[id]
	if !ok {
		return nil, ErrSaleNotFound
	}
	return s.Clone(), nil
}

// Returns ErrEmptyID if the sale has an empty ID.
func (r *saleRepo) Save(sale *model.Sale) error {
	if sale.ID == "" {
		return ErrEmptyID
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sales[sale.ID] = sale.Clone()
	return nil
}

func (r *saleRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sales[id]; !ok {
		return ErrSaleNotFound
	}
	delete(r.sales, id)
	return nil
}
