package service

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Business errors are a closed set so handlers dispatch on kind,
// never on message strings.
var (
	ErrProductNotFound      = errors.New("product not found")
	ErrSaleNotFound         = errors.New("sale not found")
	ErrPaymentNotFound      = errors.New("payment request not found")
	ErrInvalidQuantity      = errors.New("invalid quantity")
	ErrDuplicateProductName = errors.New("product name already exists")
	ErrProductHasSales      = errors.New("product has recorded sales")
	ErrMissingRestockValue  = errors.New("exactly one of delta or quantity is required")
	ErrValidation           = errors.New("validation failed")

	// ErrTransient marks store-level contention or connectivity failures.
	// Only these are safe to retry, and only with an idempotency key.
	ErrTransient = errors.New("transient storage failure")
)

// InsufficientStockError carries the available quantity so the caller
// can show it to the user.
type InsufficientStockError struct {
	Available decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: %s available", e.Available.String())
}
