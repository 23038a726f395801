package model

import "github.com/shopspring/decimal"

// PricingType is the closed set of billing modes a product can have.
// It is validated once at the boundary and never re-parsed downstream.
type PricingType string

const (
	PricingByWeight PricingType = "BY_WEIGHT" // quantity is a weight, rate is per kg
	PricingByUnit   PricingType = "BY_UNIT"   // quantity is a count, rate is per item
)

func (p PricingType) Valid() bool {
	return p == PricingByWeight || p == PricingByUnit
}

type Product struct {
	BaseModel
	// Uniqueness is scoped to active rows so a soft-deleted product's name
	// can be reused.
	Name        string          `gorm:"type:varchar(255);uniqueIndex:idx_products_name,where:deleted_at IS NULL;not null" json:"name" validate:"required"`
	PricingType PricingType     `gorm:"type:varchar(20);not null" json:"pricing_type" validate:"required,oneof=BY_WEIGHT BY_UNIT"`
	Rate        decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"rate" validate:"dgt0"`
	// Stock is only ever mutated through the ledger service (sale / reversal / restock),
	// never from a client-supplied product payload.
	Stock             decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"stock" validate:"dgte0"`
	LowStockThreshold decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"low_stock_threshold" validate:"dgte0"`

	// Relations
	Sales []Sale `json:"sales,omitempty"`
}

// LowOnStock reports whether the advisory threshold has been crossed.
// A zero threshold disables the alert.
func (p *Product) LowOnStock() bool {
	return p.LowStockThreshold.Sign() > 0 && p.Stock.Cmp(p.LowStockThreshold) <= 0
}
