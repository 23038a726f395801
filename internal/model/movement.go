package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MovementReason string

const (
	MovementSale         MovementReason = "SALE"
	MovementSaleReversal MovementReason = "SALE_REVERSAL"
	MovementRestock      MovementReason = "RESTOCK"
)

// StockMovement is the append-only audit ledger. One row per committed
// stock mutation, written in the same transaction as the mutation itself.
type StockMovement struct {
	BaseModel
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Delta     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"delta"` // negative for outbound
	Reason    MovementReason  `gorm:"type:varchar(20);not null" json:"reason"`
	// ReferenceID points at the Sale for SALE / SALE_REVERSAL rows.
	ReferenceID *uuid.UUID `gorm:"type:uuid;index" json:"reference_id,omitempty"`
}
