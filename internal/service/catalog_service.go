package service

import (
	"errors"

	"go-duka-pos/internal/model"
	"go-duka-pos/internal/repository"
	"go-duka-pos/internal/ws"
	"go-duka-pos/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogService owns product CRUD. Stock is deliberately absent from the
// update path: it only moves through the ledger service.
type CatalogService interface {
	CreateProduct(req *model.Product, actor Actor) error
	UpdateProduct(id uuid.UUID, req *model.Product, actor Actor) (*model.Product, error)
	DeleteProduct(id uuid.UUID, actor Actor) error
	GetAllProducts() ([]model.Product, error)
	GetProductByID(id uuid.UUID) (*model.Product, error)
}

type catalogService struct {
	db          TxManager
	productRepo repository.ProductRepository
	saleRepo    repository.SaleRepository
	wsHub       *ws.Hub
}

func NewCatalogService(db TxManager, pRepo repository.ProductRepository, sRepo repository.SaleRepository, hub *ws.Hub) CatalogService {
	return &catalogService{
		db:          db,
		productRepo: pRepo,
		saleRepo:    sRepo,
		wsHub:       hub,
	}
}

func (s *catalogService) CreateProduct(req *model.Product, actor Actor) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return validationError(errs)
	}

	// Duplicate name check (unique among active products)
	existing, err := s.productRepo.FindByName(req.Name)
	if err == nil && existing.ID != uuid.Nil {
		return ErrDuplicateProductName
	}

	req.CreatedBy = actor.ID
	req.UpdatedBy = actor.ID

	if err := s.productRepo.Create(req); err != nil {
		// The pre-check is advisory; a concurrent create of the same name
		// lands here as a unique violation on the active-name index.
		if isUniqueViolation(err) {
			return ErrDuplicateProductName
		}
		return err
	}

	go s.wsHub.Emit("stock_updated", map[string]interface{}{
		"action":       "product_created",
		"product_id":   req.ID,
		"product_name": req.Name,
		"new_stock":    req.Stock,
		"user":         actorPayload(actor),
	})

	return nil
}

func (s *catalogService) UpdateProduct(id uuid.UUID, req *model.Product, actor Actor) (*model.Product, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	var updated *model.Product
	err := s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := s.productRepo.FindByIDForUpdate(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		if req.Name != existing.Name {
			if other, err := s.productRepo.FindByName(req.Name); err == nil && other.ID != existing.ID {
				return ErrDuplicateProductName
			}
		}

		// Stock is not taken from the request. Rate changes only affect
		// future sales; recorded sales keep their snapshots.
		existing.Name = req.Name
		existing.PricingType = req.PricingType
		existing.Rate = req.Rate
		existing.LowStockThreshold = req.LowStockThreshold
		existing.UpdatedBy = actor.ID

		if err := s.productRepo.Save(tx, existing); err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateProductName
			}
			return err
		}

		updated = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteProduct is blocked while sales reference the product. A cascade
// would silently destroy the financial record.
func (s *catalogService) DeleteProduct(id uuid.UUID, actor Actor) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.productRepo.FindByIDForUpdate(tx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		count, err := s.saleRepo.CountByProduct(tx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrProductHasSales
		}

		return s.productRepo.Delete(tx, id, actor.ID)
	})
}

func (s *catalogService) GetAllProducts() ([]model.Product, error) {
	return s.productRepo.FindAll()
}

func (s *catalogService) GetProductByID(id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}
