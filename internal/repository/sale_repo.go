package repository

import (
	"time"

	"go-duka-pos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DailyRevenue for the sales summary chart
type DailyRevenue struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
	Count int64           `json:"count"`
}

type SaleRepository interface {
	Create(tx *gorm.DB, sale *model.Sale) error
	FindAll() ([]model.Sale, error)
	FindByDay(day time.Time) ([]model.Sale, error)
	FindByID(id uuid.UUID) (*model.Sale, error)
	FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Sale, error)
	FindByIdempotencyKey(key string) (*model.Sale, error)
	Delete(tx *gorm.DB, id uuid.UUID) error
	CountByProduct(tx *gorm.DB, productID uuid.UUID) (int64, error)
	Count() (int64, error)
	DailyRevenue(startDate, endDate time.Time) ([]DailyRevenue, error)
}

type saleRepo struct {
	db *gorm.DB
}

func NewSaleRepo(db *gorm.DB) SaleRepository {
	return &saleRepo{db}
}

func (r *saleRepo) Create(tx *gorm.DB, sale *model.Sale) error {
	return tx.Create(sale).Error
}

func (r *saleRepo) FindAll() ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.Preload("Product").Order("created_at DESC").Find(&sales).Error
	return sales, err
}

func (r *saleRepo) FindByDay(day time.Time) ([]model.Sale, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	var sales []model.Sale
	err := r.db.Preload("Product").
		Where("created_at >= ? AND created_at < ?", start, end).
		Order("created_at DESC").
		Find(&sales).Error
	return sales, err
}

func (r *saleRepo) FindByID(id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	err := r.db.Preload("Product").First(&sale, "id = ?", id).Error
	return &sale, err
}

// FindByIDForUpdate locks the sale row so a concurrent double-delete cannot
// restore the same quantity twice.
func (r *saleRepo) FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&sale, "id = ?", id).Error
	return &sale, err
}

func (r *saleRepo) FindByIdempotencyKey(key string) (*model.Sale, error) {
	var sale model.Sale
	err := r.db.Preload("Product").First(&sale, "idempotency_key = ?", key).Error
	return &sale, err
}

// Delete removes the row for real. A soft-deleted sale would keep its
// idempotency key occupying the unique index.
func (r *saleRepo) Delete(tx *gorm.DB, id uuid.UUID) error {
	return tx.Unscoped().Delete(&model.Sale{}, "id = ?", id).Error
}

func (r *saleRepo) CountByProduct(tx *gorm.DB, productID uuid.UUID) (int64, error) {
	var count int64
	err := tx.Model(&model.Sale{}).Where("product_id = ?", productID).Count(&count).Error
	return count, err
}

func (r *saleRepo) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.Sale{}).Count(&count).Error
	return count, err
}

func (r *saleRepo) DailyRevenue(startDate, endDate time.Time) ([]DailyRevenue, error) {
	var results []DailyRevenue

	rows, err := r.db.Model(&model.Sale{}).
		Select(`
			DATE(created_at) as date,
			COALESCE(SUM(total_price), 0) as total,
			COUNT(*) as count
		`).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data DailyRevenue
		if err := rows.Scan(&data.Date, &data.Total, &data.Count); err != nil {
			return nil, err
		}
		results = append(results, data)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}
