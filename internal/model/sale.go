package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Sale struct {
	BaseModel
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id" validate:"uuid_required"`
	Product   Product   `json:"product" validate:"-"` // Relation - skip validation

	// Quantity is a weight for BY_WEIGHT products and a whole count for BY_UNIT.
	Quantity decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity" validate:"dgt0"`

	// UnitPrice and TotalPrice are snapshots taken at creation time.
	// They are never re-derived from the live product, so historical
	// totals stay stable when a rate changes.
	UnitPrice  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total_price"`

	CustomerName string `gorm:"type:varchar(100)" json:"customer_name"`

	// IdempotencyKey dedupes timeout-then-retry submissions. Unique when present.
	IdempotencyKey *string `gorm:"type:varchar(64);uniqueIndex" json:"idempotency_key,omitempty"`
}
