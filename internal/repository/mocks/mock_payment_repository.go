package mocks

import (
	"go-duka-pos/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(payment *model.PaymentRequest) error {
	args := m.Called(payment)
	if payment != nil && args.Error(0) == nil && payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockPaymentRepository) FindByCheckoutID(checkoutID string) (*model.PaymentRequest, error) {
	args := m.Called(checkoutID)
	if p := args.Get(0); p != nil {
		return p.(*model.PaymentRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPaymentRepository) FindBySaleID(saleID uuid.UUID) ([]model.PaymentRequest, error) {
	args := m.Called(saleID)
	if p := args.Get(0); p != nil {
		return p.([]model.PaymentRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPaymentRepository) UpdateStatus(id uuid.UUID, status model.PaymentStatus, resultDesc string) error {
	args := m.Called(id, status, resultDesc)
	return args.Error(0)
}
