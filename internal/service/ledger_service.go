package service

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"go-duka-pos/internal/model"
	"go-duka-pos/internal/repository"
	"go-duka-pos/internal/ws"
	"go-duka-pos/pkg/validator"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const maxTxAttempts = 3

// Actor identifies the authenticated operator for audit fields and broadcasts.
type Actor struct {
	ID    string
	Name  string
	Email string
}

type RecordSaleInput struct {
	ProductID    uuid.UUID       `json:"product_id" validate:"uuid_required"`
	Quantity     decimal.Decimal `json:"quantity" validate:"dgt0"`
	CustomerName string          `json:"customer_name"`
	// IdempotencyKey makes timeout-then-retry safe: the same key never
	// produces a second sale.
	IdempotencyKey string `json:"idempotency_key"`
}

type RestockInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"uuid_required"`
	// Exactly one of Delta (relative correction) or Quantity (absolute
	// stock take) must be set.
	Delta    *decimal.Decimal `json:"delta"`
	Quantity *decimal.Decimal `json:"quantity"`
}

// TxManager is the slice of *gorm.DB the ledger needs. Kept narrow so the
// service can be unit tested without a database.
type TxManager interface {
	Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}

type LedgerService interface {
	RecordSale(in RecordSaleInput, actor Actor) (*model.Sale, error)
	DeleteSale(saleID uuid.UUID, actor Actor) error
	Restock(in RestockInput, actor Actor) (*model.Product, error)
}

type ledgerService struct {
	db           TxManager
	productRepo  repository.ProductRepository
	saleRepo     repository.SaleRepository
	movementRepo repository.MovementRepository
	wsHub        *ws.Hub
}

func NewLedgerService(db TxManager, pRepo repository.ProductRepository, sRepo repository.SaleRepository, mRepo repository.MovementRepository, hub *ws.Hub) LedgerService {
	return &ledgerService{
		db:           db,
		productRepo:  pRepo,
		saleRepo:     sRepo,
		movementRepo: mRepo,
		wsHub:        hub,
	}
}

// RecordSale atomically checks stock, decrements it, and writes the Sale
// with snapshotted prices. The product row lock serializes concurrent
// mutations per product; products never block each other.
func (s *ledgerService) RecordSale(in RecordSaleInput, actor Actor) (*model.Sale, error) {
	if errs := validator.ValidateStruct(&in); len(errs) > 0 {
		return nil, validationError(errs)
	}

	// Replay: a committed sale with this key is the response, not a new row.
	if in.IdempotencyKey != "" {
		if existing, err := s.saleRepo.FindByIdempotencyKey(in.IdempotencyKey); err == nil {
			return existing, nil
		}
	}

	// Contention retries are only safe when the caller can dedupe.
	attempts := 1
	if in.IdempotencyKey != "" {
		attempts = maxTxAttempts
	}

	var (
		sale    *model.Sale
		product *model.Product
		err     error
	)
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			time.Sleep(txBackoff(attempt))
		}
		sale, product, err = s.recordSaleOnce(in, actor)
		if err == nil {
			break
		}
		if isUniqueViolation(err) && in.IdempotencyKey != "" {
			// Lost a race against a concurrent submit of the same key.
			existing, findErr := s.saleRepo.FindByIdempotencyKey(in.IdempotencyKey)
			if findErr != nil {
				return nil, fmt.Errorf("%w: %v", ErrTransient, findErr)
			}
			return existing, nil
		}
		if !isSerializationFailure(err) {
			return nil, err
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}

	// Broadcast after commit, off the request path.
	go func() {
		s.wsHub.Emit("sale_recorded", map[string]interface{}{
			"sale": map[string]interface{}{
				"id":            sale.ID,
				"product_id":    product.ID,
				"product_name":  product.Name,
				"quantity":      sale.Quantity,
				"total_price":   sale.TotalPrice,
				"customer_name": sale.CustomerName,
			},
			"new_stock": product.Stock,
			"user":      actorPayload(actor),
			"message":   fmt.Sprintf("%s sold %s of '%s'", actor.Name, sale.Quantity.String(), product.Name),
		})
		if product.LowOnStock() {
			s.wsHub.Emit("low_stock", map[string]interface{}{
				"product_id":   product.ID,
				"product_name": product.Name,
				"stock":        product.Stock,
				"threshold":    product.LowStockThreshold,
			})
		}
	}()

	return sale, nil
}

func (s *ledgerService) recordSaleOnce(in RecordSaleInput, actor Actor) (*model.Sale, *model.Product, error) {
	var (
		sale      model.Sale
		committed model.Product
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		product, err := s.productRepo.FindByIDForUpdate(tx, in.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		total, err := ComputeTotal(product, in.Quantity)
		if err != nil {
			return err
		}

		if in.Quantity.Cmp(product.Stock) > 0 {
			return &InsufficientStockError{Available: product.Stock}
		}

		newStock := product.Stock.Sub(in.Quantity)
		if err := s.productRepo.UpdateStock(tx, product.ID, newStock, actor.ID); err != nil {
			return err
		}

		sale = model.Sale{
			ProductID:    product.ID,
			Quantity:     in.Quantity,
			UnitPrice:    product.Rate,
			TotalPrice:   total,
			CustomerName: in.CustomerName,
		}
		if in.IdempotencyKey != "" {
			key := in.IdempotencyKey
			sale.IdempotencyKey = &key
		}
		sale.CreatedBy = actor.ID
		sale.UpdatedBy = actor.ID
		if err := s.saleRepo.Create(tx, &sale); err != nil {
			return err
		}

		movement := model.StockMovement{
			ProductID:   product.ID,
			Delta:       in.Quantity.Neg(),
			Reason:      model.MovementSale,
			ReferenceID: &sale.ID,
		}
		movement.CreatedBy = actor.ID
		if err := s.movementRepo.Create(tx, &movement); err != nil {
			return err
		}

		product.Stock = newStock
		committed = *product
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &sale, &committed, nil
}

// DeleteSale restores the product's stock by the sale's own recorded
// quantity and removes the sale, as one transaction. The sale row is
// locked first so a concurrent double-delete cannot restore twice.
func (s *ledgerService) DeleteSale(saleID uuid.UUID, actor Actor) error {
	var (
		restored *model.Product
		sale     *model.Sale
		orphaned bool
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		sale, err = s.saleRepo.FindByIDForUpdate(tx, saleID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSaleNotFound
			}
			return err
		}

		product, err := s.productRepo.FindByIDForUpdate(tx, sale.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Orphaned sale: the restore target is gone. Surfaced to
				// the operator channel after commit, never swallowed.
				orphaned = true
				return s.saleRepo.Delete(tx, saleID)
			}
			return err
		}

		newStock := product.Stock.Add(sale.Quantity)
		if err := s.productRepo.UpdateStock(tx, product.ID, newStock, actor.ID); err != nil {
			return err
		}

		movement := model.StockMovement{
			ProductID:   product.ID,
			Delta:       sale.Quantity,
			Reason:      model.MovementSaleReversal,
			ReferenceID: &sale.ID,
		}
		movement.CreatedBy = actor.ID
		if err := s.movementRepo.Create(tx, &movement); err != nil {
			return err
		}

		if err := s.saleRepo.Delete(tx, saleID); err != nil {
			return err
		}

		product.Stock = newStock
		restored = product
		return nil
	})
	if err != nil {
		if isSerializationFailure(err) {
			return fmt.Errorf("%w: %v", ErrTransient, err)
		}
		return err
	}

	if orphaned {
		log.Printf("DATA INTEGRITY: sale %s referenced missing product %s; sale removed, no stock restored", saleID, sale.ProductID)
		go s.wsHub.Emit("data_integrity", map[string]interface{}{
			"sale_id":    saleID,
			"product_id": sale.ProductID,
			"message":    "sale referenced a missing product; removed without stock restore",
		})
		return nil
	}

	go s.wsHub.Emit("stock_updated", map[string]interface{}{
		"action":       "sale_reversed",
		"product_id":   restored.ID,
		"product_name": restored.Name,
		"new_stock":    restored.Stock,
		"user":         actorPayload(actor),
	})
	return nil
}

// Restock is the administrative correction path. Same per-product
// serialization scope as RecordSale, so it cannot interleave with an
// in-flight sale on the same product.
func (s *ledgerService) Restock(in RestockInput, actor Actor) (*model.Product, error) {
	if errs := validator.ValidateStruct(&in); len(errs) > 0 {
		return nil, validationError(errs)
	}
	if (in.Delta == nil) == (in.Quantity == nil) {
		return nil, ErrMissingRestockValue
	}

	var updated *model.Product
	err := s.db.Transaction(func(tx *gorm.DB) error {
		product, err := s.productRepo.FindByIDForUpdate(tx, in.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		var newStock decimal.Decimal
		if in.Delta != nil {
			newStock = product.Stock.Add(*in.Delta)
		} else {
			newStock = *in.Quantity
		}
		if newStock.Sign() < 0 {
			return fmt.Errorf("%w: resulting stock would be negative", ErrInvalidQuantity)
		}

		if err := s.productRepo.UpdateStock(tx, product.ID, newStock, actor.ID); err != nil {
			return err
		}

		movement := model.StockMovement{
			ProductID: product.ID,
			Delta:     newStock.Sub(product.Stock),
			Reason:    model.MovementRestock,
		}
		movement.CreatedBy = actor.ID
		if err := s.movementRepo.Create(tx, &movement); err != nil {
			return err
		}

		product.Stock = newStock
		updated = product
		return nil
	})
	if err != nil {
		if isSerializationFailure(err) {
			return nil, fmt.Errorf("%w: %v", ErrTransient, err)
		}
		return nil, err
	}

	go func() {
		s.wsHub.Emit("stock_updated", map[string]interface{}{
			"action":       "restocked",
			"product_id":   updated.ID,
			"product_name": updated.Name,
			"new_stock":    updated.Stock,
			"user":         actorPayload(actor),
		})
		if updated.LowOnStock() {
			s.wsHub.Emit("low_stock", map[string]interface{}{
				"product_id":   updated.ID,
				"product_name": updated.Name,
				"stock":        updated.Stock,
				"threshold":    updated.LowStockThreshold,
			})
		}
	}()

	return updated, nil
}

func actorPayload(actor Actor) map[string]interface{} {
	return map[string]interface{}{
		"id":    actor.ID,
		"name":  actor.Name,
		"email": actor.Email,
	}
}

// validationError maps a validator failure onto the error taxonomy so
// handlers never have to parse messages.
func validationError(errs []*validator.ErrorResponse) error {
	first := errs[0]
	if first.Tag == "dgt0" || first.Tag == "dgte0" || strings.Contains(first.FailedField, "Quantity") {
		return fmt.Errorf("%w: field '%s' failed on tag '%s'", ErrInvalidQuantity, first.FailedField, first.Tag)
	}
	return fmt.Errorf("%w: field '%s' failed on tag '%s'", ErrValidation, first.FailedField, first.Tag)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// 40001 serialization_failure, 40P01 deadlock_detected
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && (pgErr.Code == "40001" || pgErr.Code == "40P01")
}

func txBackoff(attempt int) time.Duration {
	base := 50 * time.Millisecond << uint(attempt-1)
	return base + time.Duration(rand.Intn(25))*time.Millisecond
}
