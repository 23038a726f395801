package service

import (
	"time"

	"go-duka-pos/internal/repository"

	"github.com/shopspring/decimal"
)

// ShopStats for the overview endpoint
type ShopStats struct {
	TotalProducts  int64           `json:"total_products"`
	TotalSales     int64           `json:"total_sales"`
	LowStockCount  int64           `json:"low_stock_count"`
	TotalValuation decimal.Decimal `json:"total_valuation"`
}

type ReportService interface {
	GetShopStats() (*ShopStats, error)
	GetStockMovement(days int) ([]repository.StockMovementData, error)
	GetSalesSummary(days int) ([]repository.DailyRevenue, error)
}

type reportService struct {
	productRepo  repository.ProductRepository
	saleRepo     repository.SaleRepository
	movementRepo repository.MovementRepository
}

func NewReportService(pRepo repository.ProductRepository, sRepo repository.SaleRepository, mRepo repository.MovementRepository) ReportService {
	return &reportService{
		productRepo:  pRepo,
		saleRepo:     sRepo,
		movementRepo: mRepo,
	}
}

func (s *reportService) GetShopStats() (*ShopStats, error) {
	stats := &ShopStats{}

	var err error
	if stats.TotalProducts, err = s.productRepo.Count(); err != nil {
		return nil, err
	}
	if stats.TotalSales, err = s.saleRepo.Count(); err != nil {
		return nil, err
	}
	if stats.LowStockCount, err = s.productRepo.CountLowStock(); err != nil {
		return nil, err
	}
	if stats.TotalValuation, err = s.productRepo.TotalValuation(); err != nil {
		return nil, err
	}

	return stats, nil
}

func (s *reportService) GetStockMovement(days int) ([]repository.StockMovementData, error) {
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)

	return s.movementRepo.GetStockMovement(startDate, endDate)
}

func (s *reportService) GetSalesSummary(days int) ([]repository.DailyRevenue, error) {
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)

	return s.saleRepo.DailyRevenue(startDate, endDate)
}
