package mocks

import (
	"time"

	"go-duka-pos/internal/model"
	"go-duka-pos/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) Create(tx *gorm.DB, sale *model.Sale) error {
	args := m.Called(tx, sale)
	if sale != nil && args.Error(0) == nil && sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockSaleRepository) FindAll() ([]model.Sale, error) {
	args := m.Called()
	if sales := args.Get(0); sales != nil {
		return sales.([]model.Sale), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSaleRepository) FindByDay(day time.Time) ([]model.Sale, error) {
	args := m.Called(day)
	if sales := args.Get(0); sales != nil {
		return sales.([]model.Sale), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSaleRepository) FindByID(id uuid.UUID) (*model.Sale, error) {
	args := m.Called(id)
	if s := args.Get(0); s != nil {
		return s.(*model.Sale), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSaleRepository) FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Sale, error) {
	args := m.Called(tx, id)
	if s := args.Get(0); s != nil {
		return s.(*model.Sale), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSaleRepository) FindByIdempotencyKey(key string) (*model.Sale, error) {
	args := m.Called(key)
	if s := args.Get(0); s != nil {
		return s.(*model.Sale), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSaleRepository) Delete(tx *gorm.DB, id uuid.UUID) error {
	args := m.Called(tx, id)
	return args.Error(0)
}

func (m *MockSaleRepository) CountByProduct(tx *gorm.DB, productID uuid.UUID) (int64, error) {
	args := m.Called(tx, productID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSaleRepository) Count() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSaleRepository) DailyRevenue(startDate, endDate time.Time) ([]repository.DailyRevenue, error) {
	args := m.Called(startDate, endDate)
	if data := args.Get(0); data != nil {
		return data.([]repository.DailyRevenue), args.Error(1)
	}
	return nil, args.Error(1)
}
