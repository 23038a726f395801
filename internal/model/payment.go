package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentFailed  PaymentStatus = "FAILED"
)

// PaymentRequest tracks one STK push from initiation to gateway callback.
type PaymentRequest struct {
	BaseModel
	SaleID      *uuid.UUID      `gorm:"type:uuid;index" json:"sale_id,omitempty"`
	CheckoutID  string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"checkout_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	PhoneNumber string          `gorm:"type:varchar(20);not null" json:"phone_number"`
	Reference   string          `gorm:"type:varchar(100)" json:"reference"`
	Status      PaymentStatus   `gorm:"type:varchar(10);default:'PENDING'" json:"status"`
	ResultDesc  string          `gorm:"type:varchar(255)" json:"result_desc"`
}
