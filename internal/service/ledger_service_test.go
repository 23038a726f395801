package service

import (
	"database/sql"
	"errors"
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

// fakeTxManager runs the transaction body directly; the repos are mocked
// so no real tx handle is needed.
type fakeTxManager struct{}

func (fakeTxManager) Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error {
	return fc(nil)
}

func decEq(want decimal.Decimal) interface{} {
	return mock.MatchedBy(func(got decimal.Decimal) bool { return got.Equal(want) })
}

func newLedgerFixture() (*mocks.MockProductRepository, *mocks.MockSaleRepository, *mocks.MockMovementRepository, LedgerService) {
	productRepo := new(mocks.MockProductRepository)
	saleRepo := new(mocks.MockSaleRepository)
	movementRepo := new(mocks.MockMovementRepository)
	svc := NewLedgerService(fakeTxManager{}, productRepo, saleRepo, movementRepo, nil)
	return productRepo, saleRepo, movementRepo, svc
}

func unitProduct(stock, rate int64) *model.Product {
	p := &model.Product{
		Name:        "Maize Flour 2kg",
		PricingType: model.PricingByUnit,
		Rate:        decimal.NewFromInt(rate),
		Stock:       decimal.NewFromInt(stock),
	}
	p.ID = uuid.New()
	return p
}

func TestRecordSale_DecrementsAndSnapshotsPrice(t *testing.T) {
	productRepo, saleRepo, movementRepo, svc := newLedgerFixture()
	actor := Actor{ID: "op-1", Name: "Amina"}

	product := unitProduct(10, 50)
	productRepo.On("FindByIDForUpdate", mock.Anything, product.ID).Return(product, nil).Once()
	productRepo.On("UpdateStock", mock.Anything, product.ID, decEq(decimal.NewFromInt(6)), "op-1").Return(nil).Once()
	saleRepo.On("Create", mock.Anything, mock.MatchedBy(func(s *model.Sale) bool {
		return s.ProductID == product.ID &&
			s.UnitPrice.Equal(decimal.NewFromInt(50)) &&
			s.TotalPrice.Equal(decimal.NewFromInt(200))
	})).Return(nil).Once()
	movementRepo.On("Create", mock.Anything, mock.MatchedBy(func(m *model.StockMovement) bool {
		return m.Reason == model.MovementSale && m.Delta.Equal(decimal.NewFromInt(-4))
	})).Return(nil).Once()

	sale, err := svc.RecordSale(RecordSaleInput{
		ProductID:    product.ID,
		Quantity:     decimal.NewFromInt(4),
		CustomerName: "Wanjiku",
	}, actor)

	assert.NoError(t, err)
	assert.NotNil(t, sale)
	assert.True(t, sale.TotalPrice.Equal(decimal.NewFromInt(200)))
	assert.True(t, sale.UnitPrice.Equal(decimal.NewFromInt(50)))
	productRepo.AssertExpectations(t)
	saleRepo.AssertExpectations(t)
	movementRepo.AssertExpectations(t)
}

func TestRecordSale_InsufficientStockReportsAvailable(t *testing.T) {
	productRepo, _, _, svc := newLedgerFixture()

	product := unitProduct(6, 50)
	productRepo.On("FindByIDForUpdate", mock.Anything, product.ID).Return(product, nil).Once()

	_, err := svc.RecordSale(RecordSaleInput{
		ProductID: product.ID,
		Quantity:  decimal.NewFromInt(10),
	}, Actor{ID: "op-1"})

	var insufficient *InsufficientStockError
	assert.ErrorAs(t, err, &insufficient)
	assert.True(t, insufficient.Available.Equal(decimal.NewFromInt(6)))
	// No decrement, no sale, no movement.
	productRepo.AssertNotCalled(t, "UpdateStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRecordSale_ProductNotFound(t *testing.T) {
	productRepo, _, _, svc := newLedgerFixture()

	missing := uuid.New()
	productRepo.On("FindByIDForUpdate", mock.Anything, missing).Return(nil, gorm.ErrRecordNotFound).Once()

	_, err := svc.RecordSale(RecordSaleInput{
		ProductID: missing,
		Quantity:  decimal.NewFromInt(1),
	}, Actor{ID: "op-1"})

	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestRecordSale_RejectsNonPositiveQuantity(t *testing.T) {
	_, _, _, svc := newLedgerFixture()

	_, err := svc.RecordSale(RecordSaleInput{
		ProductID: uuid.New(),
		Quantity:  decimal.Zero,
	}, Actor{ID: "op-1"})

	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestRecordSale_RejectsFractionalUnitCount(t *testing.T) {
	productRepo, _, _, svc := newLedgerFixture()

	product := unitProduct(10, 50)
	productRepo.On("FindByIDForUpdate", mock.Anything, product.ID).Return(product, nil).Once()

	_, err := svc.RecordSale(RecordSaleInput{
		ProductID: product.ID,
		Quantity:  decimal.RequireFromString("1.5"),
	}, Actor{ID: "op-1"})

	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestRecordSale_ByWeightFractionalQuantity(t *testing.T) {
	productRepo, saleRepo, movementRepo, svc := newLedgerFixture()

	product := &model.Product{
		Name:        "Rice",
		PricingType: model.PricingByWeight,
		Rate:        decimal.NewFromInt(100),
		Stock:       decimal.RequireFromString("2.5"),
	}
	product.ID = uuid.New()

	productRepo.On("FindByIDForUpdate", mock.Anything, product.ID).Return(product, nil).Once()
	productRepo.On("UpdateStock", mock.Anything, product.ID, decEq(decimal.Zero), "op-1").Return(nil).Once()
	saleRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	movementRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	sale, err := svc.RecordSale(RecordSaleInput{
		ProductID: product.ID,
		Quantity:  decimal.RequireFromString("2.5"),
	}, Actor{ID: "op-1"})

	assert.NoError(t, err)
	assert.True(t, sale.TotalPrice.Equal(decimal.NewFromInt(250)))

	// Stock is exhausted now; the next gram fails with available=0.
	empty := *product
	empty.Stock = decimal.Zero
	productRepo.On("FindByIDForUpdate", mock.Anything, product.ID).Return(&empty, nil).Once()

	_, err = svc.RecordSale(RecordSaleInput{
		ProductID: product.ID,
		Quantity:  decimal.RequireFromString("0.1"),
	}, Actor{ID: "op-1"})

	var insufficient *InsufficientStockError
	assert.ErrorAs(t, err, &insufficient)
	assert.True(t, insufficient.Available.IsZero())
}

func TestRecordSale_IdempotentReplayReturnsOriginal(t *testing.T) {
	productRepo, saleRepo, _, svc := newLedgerFixture()

	existing := &model.Sale{
		ProductID:  uuid.New(),
		Quantity:   decimal.NewFromInt(4),
		TotalPrice: decimal.NewFromInt(200),
	}
	existing.ID = uuid.New()
	saleRepo.On("FindByIdempotencyKey", "retry-key-1").Return(existing, nil).Once()

	sale, err := svc.RecordSale(RecordSaleInput{
		ProductID:      existing.ProductID,
		Quantity:       decimal.NewFromInt(4),
		IdempotencyKey: "retry-key-1",
	}, Actor{ID: "op-1"})

	assert.NoError(t, err)
	assert.Equal(t, existing.ID, sale.ID)
	// The locked transaction never ran.
	productRepo.AssertNotCalled(t, "FindByIDForUpdate", mock.Anything, mock.Anything)
}

func TestRecordSale_ConcurrentDuplicateKeyReturnsWinner(t *testing.T) {
	productRepo, saleRepo, movementRepo, svc := newLedgerFixture()

	product := unitProduct(10, 50)
	winner := &model.Sale{
		ProductID:  product.ID,
		Quantity:   decimal.NewFromInt(4),
		TotalPrice: decimal.NewFromInt(200),
	}
	winner.ID = uuid.New()

	// The replay pre-check misses: the concurrent submit has not committed
	// yet. Our own insert then loses the race on the unique key index.
	saleRepo.On("FindByIdempotencyKey", "retry-key-2").Return(nil, gorm.ErrRecordNotFound).Once()
	productRepo.On("FindByIDForUpdate", mock.Anything, product.ID).Return(product, nil).Once()
	productRepo.On("UpdateStock", mock.Anything, product.ID, mock.Anything, mock.Anything).Return(nil).Once()
	saleRepo.On("Create", mock.Anything, mock.Anything).Return(&pgconn.PgError{Code: "23505"}).Once()
	saleRepo.On("FindByIdempotencyKey", "retry-key-2").Return(winner, nil).Once()

	sale, err := svc.RecordSale(RecordSaleInput{
		ProductID:      product.ID,
		Quantity:       decimal.NewFromInt(4),
		IdempotencyKey: "retry-key-2",
	}, Actor{ID: "op-1"})

	assert.NoError(t, err)
	assert.Equal(t, winner.ID, sale.ID)
	// The rolled-back attempt wrote no movement.
	movementRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	saleRepo.AssertExpectations(t)
}

func TestRecordSale_SerializationFailuresExhaustRetries(t *testing.T) {
	productRepo, saleRepo, _, svc := newLedgerFixture()

	product := unitProduct(10, 50)
	saleRepo.On("FindByIdempotencyKey", "retry-key-3").Return(nil, gorm.ErrRecordNotFound).Once()
	productRepo.On("FindByIDForUpdate", mock.Anything, product.ID).
		Return(nil, &pgconn.PgError{Code: "40001"}).Times(maxTxAttempts)

	_, err := svc.RecordSale(RecordSaleInput{
		ProductID:      product.ID,
		Quantity:       decimal.NewFromInt(1),
		IdempotencyKey: "retry-key-3",
	}, Actor{ID: "op-1"})

	assert.ErrorIs(t, err, ErrTransient)
	productRepo.AssertExpectations(t)
}

func TestDeleteSale_RestoresStock(t *testing.T) {
	productRepo, saleRepo, movementRepo, svc := newLedgerFixture()

	product := unitProduct(4, 50)
	sale := &model.Sale{
		ProductID: product.ID,
		Quantity:  decimal.NewFromInt(6),
	}
	sale.ID = uuid.New()

	saleRepo.On("FindByIDForUpdate", mock.Anything, sale.ID).Return(sale, nil).Once()
	productRepo.On("FindByIDForUpdate", mock.Anything, product.ID).Return(product, nil).Once()
	productRepo.On("UpdateStock", mock.Anything, product.ID, decEq(decimal.NewFromInt(10)), "op-1").Return(nil).Once()
	movementRepo.On("Create", mock.Anything, mock.MatchedBy(func(m *model.StockMovement) bool {
		return m.Reason == model.MovementSaleReversal && m.Delta.Equal(decimal.NewFromInt(6))
	})).Return(nil).Once()
	saleRepo.On("Delete", mock.Anything, sale.ID).Return(nil).Once()

	err := svc.DeleteSale(sale.ID, Actor{ID: "op-1"})

	assert.NoError(t, err)
	productRepo.AssertExpectations(t)
	saleRepo.AssertExpectations(t)
	movementRepo.AssertExpectations(t)
}

func TestDeleteSale_NotFound(t *testing.T) {
	_, saleRepo, _, svc := newLedgerFixture()

	missing := uuid.New()
	saleRepo.On("FindByIDForUpdate", mock.Anything, missing).Return(nil, gorm.ErrRecordNotFound).Once()

	err := svc.DeleteSale(missing, Actor{ID: "op-1"})
	assert.ErrorIs(t, err, ErrSaleNotFound)
}

func TestDeleteSale_OrphanedSaleIsRemovedWithoutRestore(t *testing.T) {
	productRepo, saleRepo, _, svc := newLedgerFixture()

	sale := &model.Sale{
		ProductID: uuid.New(),
		Quantity:  decimal.NewFromInt(3),
	}
	sale.ID = uuid.New()

	saleRepo.On("FindByIDForUpdate", mock.Anything, sale.ID).Return(sale, nil).Once()
	productRepo.On("FindByIDForUpdate", mock.Anything, sale.ProductID).Return(nil, gorm.ErrRecordNotFound).Once()
	saleRepo.On("Delete", mock.Anything, sale.ID).Return(nil).Once()

	err := svc.DeleteSale(sale.ID, Actor{ID: "op-1"})

	assert.NoError(t, err)
	productRepo.AssertNotCalled(t, "UpdateStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	saleRepo.AssertExpectations(t)
}

func TestRestock_DeltaAndAbsolute(t *testing.T) {
	t.Run("relative delta", func(t *testing.T) {
		productRepo, _, movementRepo, svc := newLedgerFixture()

		product := unitProduct(10, 50)
		productRepo.On("FindByIDForUpdate", mock.Anything, product.ID).Return(product, nil).Once()
		productRepo.On("UpdateStock", mock.Anything, product.ID, decEq(decimal.NewFromInt(15)), "op-1").Return(nil).Once()
		movementRepo.On("Create", mock.Anything, mock.MatchedBy(func(m *model.StockMovement) bool {
			return m.Reason == model.MovementRestock && m.Delta.Equal(decimal.NewFromInt(5))
		})).Return(nil).Once()

		delta := decimal.NewFromInt(5)
		updated, err := svc.Restock(RestockInput{ProductID: product.ID, Delta: &delta}, Actor{ID: "op-1"})

		assert.NoError(t, err)
		assert.True(t, updated.Stock.Equal(decimal.NewFromInt(15)))
	})

	t.Run("absolute stock take", func(t *testing.T) {
		productRepo, _, movementRepo, svc := newLedgerFixture()

		product := unitProduct(10, 50)
		productRepo.On("FindByIDForUpdate", mock.Anything, product.ID).Return(product, nil).Once()
		productRepo.On("UpdateStock", mock.Anything, product.ID, decEq(decimal.NewFromInt(3)), "op-1").Return(nil).Once()
		movementRepo.On("Create", mock.Anything, mock.MatchedBy(func(m *model.StockMovement) bool {
			return m.Delta.Equal(decimal.NewFromInt(-7))
		})).Return(nil).Once()

		absolute := decimal.NewFromInt(3)
		updated, err := svc.Restock(RestockInput{ProductID: product.ID, Quantity: &absolute}, Actor{ID: "op-1"})

		assert.NoError(t, err)
		assert.True(t, updated.Stock.Equal(decimal.NewFromInt(3)))
	})

	t.Run("negative resulting stock rejected", func(t *testing.T) {
		productRepo, _, _, svc := newLedgerFixture()

		product := unitProduct(10, 50)
		productRepo.On("FindByIDForUpdate", mock.Anything, product.ID).Return(product, nil).Once()

		delta := decimal.NewFromInt(-11)
		_, err := svc.Restock(RestockInput{ProductID: product.ID, Delta: &delta}, Actor{ID: "op-1"})

		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("exactly one of delta or quantity", func(t *testing.T) {
		_, _, _, svc := newLedgerFixture()

		_, err := svc.Restock(RestockInput{ProductID: uuid.New()}, Actor{ID: "op-1"})
		assert.ErrorIs(t, err, ErrMissingRestockValue)

		delta := decimal.NewFromInt(1)
		absolute := decimal.NewFromInt(2)
		_, err = svc.Restock(RestockInput{ProductID: uuid.New(), Delta: &delta, Quantity: &absolute}, Actor{ID: "op-1"})
		assert.ErrorIs(t, err, ErrMissingRestockValue)
	})
}

func TestRecordSale_StorageErrorBubblesUp(t *testing.T) {
	productRepo, saleRepo, _, svc := newLedgerFixture()

	product := unitProduct(10, 50)
	boom := errors.New("connection reset")
	productRepo.On("FindByIDForUpdate", mock.Anything, product.ID).Return(product, nil).Once()
	productRepo.On("UpdateStock", mock.Anything, product.ID, mock.Anything, mock.Anything).Return(nil).Once()
	saleRepo.On("Create", mock.Anything, mock.Anything).Return(boom).Once()

	_, err := svc.RecordSale(RecordSaleInput{
		ProductID: product.ID,
		Quantity:  decimal.NewFromInt(1),
	}, Actor{ID: "op-1"})

	assert.ErrorIs(t, err, boom)
}
