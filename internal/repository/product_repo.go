package repository

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"go-pos-ledger/internal/model"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock remaining")
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
)

// ProductRepository is the inventory store. DecrementAll and RestoreAll apply
// a whole group of lines or nothing.
type ProductRepository interface {
	FindAll() ([]model.Product, error)
	FindByID(id string) (*model.Product, error)
	DecrementAll(lines []model.StockLine) error
	RestoreAll(lines []model.StockLine) error
}

type productRepo struct {
	mu       sync.Mutex
	products map[string]*model.Product
}

func NewProductRepo(products []model.Product) ProductRepository {
	r := &productRepo{products: make(map[string]*model.Product, len(products))}
	for i := range products {
		p := products[i]
		if p.Quantity < 0 {
			p.Quantity = 0
		}
		r.products[p.ID] = &p
	}
	return r
}

func (r *productRepo) FindAll() ([]model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	products := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		products = append(products, *p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

func (r *productRepo) FindByID(id string) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	product := *p
	return &product, nil
}

// DecrementAll checks every line against available stock before touching any
// product. Lines for the same product are summed first.
func (r *productRepo) DecrementAll(lines []model.StockLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	wanted, order, err := r.collect(lines)
	if err != nil {
		return err
	}

	for _, id := range order {
		p := r.products[id]
		if wanted[id] > p.Quantity {
			return fmt.Errorf("%w: '%s' has %d, requested %d", ErrInsufficientStock, p.Name, p.Quantity, wanted[id])
		}
	}

	for _, id := range order {
		r.products[id].Quantity -= wanted[id]
	}
	return nil
}

// RestoreAll puts stock back for a cancelled sale.
func (r *productRepo) RestoreAll(lines []model.StockLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	restored, order, err := r.collect(lines)
	if err != nil {
		return err
	}

	for _, id := range order {
		r.products[id].Quantity += restored[id]
	}
	return nil
}

// collect validates lines and sums them per product, keeping first-seen order.
// Caller must hold r.mu.
func (r *productRepo) collect(lines []model.StockLine) (map[string]int, []string, error) {
	totals := make(map[string]int, len(lines))
	order := make([]string, 0, len(lines))

	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, nil, fmt.Errorf("%w: product %s", ErrInvalidQuantity, line.ProductID)
		}
		if _, ok := r.products[line.ProductID]; !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrProductNotFound, line.ProductID)
		}
		if _, seen := totals[line.ProductID]; !seen {
			order = append(order, line.ProductID)
		}
		totals[line.ProductID] += line.Quantity
	}
	return totals, order, nil
}
