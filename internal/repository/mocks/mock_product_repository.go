package mocks

import (
	"go-duka-pos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(product *model.Product) error {
	args := m.Called(product)
	if product != nil && args.Error(0) == nil && product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockProductRepository) FindAll() ([]model.Product, error) {
	args := m.Called()
	if products := args.Get(0); products != nil {
		return products.([]model.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductRepository) FindByID(id uuid.UUID) (*model.Product, error) {
	args := m.Called(id)
	if p := args.Get(0); p != nil {
		return p.(*model.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductRepository) FindByName(name string) (*model.Product, error) {
	args := m.Called(name)
	if p := args.Get(0); p != nil {
		return p.(*model.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductRepository) FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	args := m.Called(tx, id)
	if p := args.Get(0); p != nil {
		return p.(*model.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductRepository) Save(tx *gorm.DB, product *model.Product) error {
	args := m.Called(tx, product)
	return args.Error(0)
}

func (m *MockProductRepository) UpdateStock(tx *gorm.DB, id uuid.UUID, newStock decimal.Decimal, updatedBy string) error {
	args := m.Called(tx, id, newStock, updatedBy)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(tx *gorm.DB, id uuid.UUID, deletedBy string) error {
	args := m.Called(tx, id, deletedBy)
	return args.Error(0)
}

func (m *MockProductRepository) Count() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) CountLowStock() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) TotalValuation() (decimal.Decimal, error) {
	args := m.Called()
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
