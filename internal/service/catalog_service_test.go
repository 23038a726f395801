package service

import (
	"testing"

	"go-duka-pos/internal/model"
	"go-duka-pos/internal/repository/mocks"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func newCatalogFixture() (*mocks.MockProductRepository, *mocks.MockSaleRepository, CatalogService) {
	productRepo := new(mocks.MockProductRepository)
	saleRepo := new(mocks.MockSaleRepository)
	svc := NewCatalogService(fakeTxManager{}, productRepo, saleRepo, nil)
	return productRepo, saleRepo, svc
}

func TestCreateProduct(t *testing.T) {
	t.Run("successful creation", func(t *testing.T) {
		productRepo, _, svc := newCatalogFixture()

		productRepo.On("FindByName", "Sukari 1kg").Return(nil, gorm.ErrRecordNotFound).Once()
		productRepo.On("Create", mock.MatchedBy(func(p *model.Product) bool {
			return p.Name == "Sukari 1kg" && p.CreatedBy == "op-1"
		})).Return(nil).Once()

		product := &model.Product{
			Name:        "Sukari 1kg",
			PricingType: model.PricingByUnit,
			Rate:        decimal.NewFromInt(180),
		}

		err := svc.CreateProduct(product, Actor{ID: "op-1"})
		assert.NoError(t, err)
		productRepo.AssertExpectations(t)
	})

	t.Run("duplicate name rejected", func(t *testing.T) {
		productRepo, _, svc := newCatalogFixture()

		existing := &model.Product{Name: "Sukari 1kg"}
		existing.ID = uuid.New()
		productRepo.On("FindByName", "Sukari 1kg").Return(existing, nil).Once()

		product := &model.Product{
			Name:        "Sukari 1kg",
			PricingType: model.PricingByUnit,
			Rate:        decimal.NewFromInt(180),
		}

		err := svc.CreateProduct(product, Actor{ID: "op-1"})
		assert.ErrorIs(t, err, ErrDuplicateProductName)
		productRepo.AssertNotCalled(t, "Create", mock.Anything)
	})

	t.Run("unique violation at insert maps to duplicate name", func(t *testing.T) {
		productRepo, _, svc := newCatalogFixture()

		// The FindByName pre-check passes (the only "Sukari 1kg" row is
		// soft-deleted, or a concurrent writer hasn't committed yet), then
		// the active-name index rejects the insert.
		productRepo.On("FindByName", "Sukari 1kg").Return(nil, gorm.ErrRecordNotFound).Once()
		productRepo.On("Create", mock.Anything).Return(&pgconn.PgError{Code: "23505"}).Once()

		product := &model.Product{
			Name:        "Sukari 1kg",
			PricingType: model.PricingByUnit,
			Rate:        decimal.NewFromInt(180),
		}

		err := svc.CreateProduct(product, Actor{ID: "op-1"})
		assert.ErrorIs(t, err, ErrDuplicateProductName)
	})

	t.Run("bad pricing type rejected at the boundary", func(t *testing.T) {
		_, _, svc := newCatalogFixture()

		product := &model.Product{
			Name:        "Sukari 1kg",
			PricingType: model.PricingType("PIECE"),
			Rate:        decimal.NewFromInt(180),
		}

		err := svc.CreateProduct(product, Actor{ID: "op-1"})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestUpdateProduct_IgnoresClientStock(t *testing.T) {
	productRepo, _, svc := newCatalogFixture()

	existing := &model.Product{
		Name:        "Unga 2kg",
		PricingType: model.PricingByUnit,
		Rate:        decimal.NewFromInt(150),
		Stock:       decimal.NewFromInt(40),
	}
	existing.ID = uuid.New()

	productRepo.On("FindByIDForUpdate", mock.Anything, existing.ID).Return(existing, nil).Once()
	productRepo.On("Save", mock.Anything, mock.MatchedBy(func(p *model.Product) bool {
		// Rate changed, stock untouched by the request payload.
		return p.Rate.Equal(decimal.NewFromInt(165)) && p.Stock.Equal(decimal.NewFromInt(40))
	})).Return(nil).Once()

	req := &model.Product{
		Name:        "Unga 2kg",
		PricingType: model.PricingByUnit,
		Rate:        decimal.NewFromInt(165),
		Stock:       decimal.NewFromInt(9999), // must be ignored
	}

	updated, err := svc.UpdateProduct(existing.ID, req, Actor{ID: "op-1"})
	assert.NoError(t, err)
	assert.True(t, updated.Stock.Equal(decimal.NewFromInt(40)))
	productRepo.AssertExpectations(t)
}

func TestUpdateProduct_UniqueViolationOnRename(t *testing.T) {
	productRepo, _, svc := newCatalogFixture()

	existing := &model.Product{
		Name:        "Unga 2kg",
		PricingType: model.PricingByUnit,
		Rate:        decimal.NewFromInt(150),
	}
	existing.ID = uuid.New()

	productRepo.On("FindByIDForUpdate", mock.Anything, existing.ID).Return(existing, nil).Once()
	productRepo.On("FindByName", "Mchele 1kg").Return(nil, gorm.ErrRecordNotFound).Once()
	productRepo.On("Save", mock.Anything, mock.Anything).Return(&pgconn.PgError{Code: "23505"}).Once()

	req := &model.Product{
		Name:        "Mchele 1kg",
		PricingType: model.PricingByUnit,
		Rate:        decimal.NewFromInt(150),
	}

	_, err := svc.UpdateProduct(existing.ID, req, Actor{ID: "op-1"})
	assert.ErrorIs(t, err, ErrDuplicateProductName)
}

func TestDeleteProduct(t *testing.T) {
	t.Run("blocked while sales reference it", func(t *testing.T) {
		productRepo, saleRepo, svc := newCatalogFixture()

		product := &model.Product{Name: "Mchele"}
		product.ID = uuid.New()
		productRepo.On("FindByIDForUpdate", mock.Anything, product.ID).Return(product, nil).Once()
		saleRepo.On("CountByProduct", mock.Anything, product.ID).Return(int64(3), nil).Once()

		err := svc.DeleteProduct(product.ID, Actor{ID: "op-1"})
		assert.ErrorIs(t, err, ErrProductHasSales)
		productRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("deleted when unreferenced", func(t *testing.T) {
		productRepo, saleRepo, svc := newCatalogFixture()

		product := &model.Product{Name: "Mchele"}
		product.ID = uuid.New()
		productRepo.On("FindByIDForUpdate", mock.Anything, product.ID).Return(product, nil).Once()
		saleRepo.On("CountByProduct", mock.Anything, product.ID).Return(int64(0), nil).Once()
		productRepo.On("Delete", mock.Anything, product.ID, "op-1").Return(nil).Once()

		err := svc.DeleteProduct(product.ID, Actor{ID: "op-1"})
		assert.NoError(t, err)
		productRepo.AssertExpectations(t)
	})

	t.Run("missing product", func(t *testing.T) {
		productRepo, _, svc := newCatalogFixture()

		missing := uuid.New()
		productRepo.On("FindByIDForUpdate", mock.Anything, missing).Return(nil, gorm.ErrRecordNotFound).Once()

		err := svc.DeleteProduct(missing, Actor{ID: "op-1"})
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}
