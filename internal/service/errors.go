package service

import (
	"errors"

	"go-pos-ledger/internal/repository"
)

// Errors returned by ledger commands. Detail is wrapped with %w, so match
// them with errors.Is.
var (
	ErrUnknownSale       = repository.ErrSaleNotFound
	ErrUnknownProduct    = repository.ErrProductNotFound
	ErrInsufficientStock = repository.ErrInsufficientStock
	ErrInvalidQuantity   = repository.ErrInvalidQuantity
	ErrUnknownPayment    = errors.New("payment not found")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidRequest    = errors.New("invalid request")

	// ErrNotCancellable wraps the stock error of a sale that cannot be
	// restored, such as one whose product left the catalogue.
	ErrNotCancellable = errors.New("sale cannot be cancelled")
)
