package mocks

import (
	"time"

	"go-duka-pos/internal/model"
	"go-duka-pos/internal/repository"

	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type MockMovementRepository struct {
	mock.Mock
}

func (m *MockMovementRepository) Create(tx *gorm.DB, movement *model.StockMovement) error {
	args := m.Called(tx, movement)
	return args.Error(0)
}

func (m *MockMovementRepository) GetStockMovement(startDate, endDate time.Time) ([]repository.StockMovementData, error) {
	args := m.Called(startDate, endDate)
	if data := args.Get(0); data != nil {
		return data.([]repository.StockMovementData), args.Error(1)
	}
	return nil, args.Error(1)
}
