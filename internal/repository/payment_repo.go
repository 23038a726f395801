package repository

import (
	"go-duka-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(payment *model.PaymentRequest) error
	FindByCheckoutID(checkoutID string) (*model.PaymentRequest, error)
	FindBySaleID(saleID uuid.UUID) ([]model.PaymentRequest, error)
	UpdateStatus(id uuid.UUID, status model.PaymentStatus, resultDesc string) error
}

type paymentRepo struct {
	db *gorm.DB
}

func NewPaymentRepo(db *gorm.DB) PaymentRepository {
	return &paymentRepo{db}
}

func (r *paymentRepo) Create(payment *model.PaymentRequest) error {
	return r.db.Create(payment).Error
}

func (r *paymentRepo) FindByCheckoutID(checkoutID string) (*model.PaymentRequest, error) {
	var payment model.PaymentRequest
	err := r.db.First(&payment, "checkout_id = ?", checkoutID).Error
	return &payment, err
}

func (r *paymentRepo) FindBySaleID(saleID uuid.UUID) ([]model.PaymentRequest, error) {
	var payments []model.PaymentRequest
	err := r.db.Where("sale_id = ?", saleID).Order("created_at DESC").Find(&payments).Error
	return payments, err
}

func (r *paymentRepo) UpdateStatus(id uuid.UUID, status model.PaymentStatus, resultDesc string) error {
	return r.db.Model(&model.PaymentRequest{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      status,
			"result_desc": resultDesc,
		}).Error
}
