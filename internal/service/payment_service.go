package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"go-duka-pos/internal/model"
	"go-duka-pos/internal/repository"
	"go-duka-pos/internal/ws"
	"go-duka-pos/pkg/mpesa"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InitiatePaymentInput struct {
	SaleID      uuid.UUID `json:"sale_id" validate:"uuid_required"`
	PhoneNumber string    `json:"phone_number" validate:"required"`
	Reference   string    `json:"reference"`
}

type PaymentService interface {
	InitiateSTKPush(ctx context.Context, in InitiatePaymentInput, actor Actor) (*model.PaymentRequest, error)
	HandleCallback(body []byte) error
}

type paymentService struct {
	saleRepo    repository.SaleRepository
	paymentRepo repository.PaymentRepository
	mpesaClient *mpesa.Client
	wsHub       *ws.Hub
}

func NewPaymentService(sRepo repository.SaleRepository, pRepo repository.PaymentRepository, client *mpesa.Client, hub *ws.Hub) PaymentService {
	return &paymentService{
		saleRepo:    sRepo,
		paymentRepo: pRepo,
		mpesaClient: client,
		wsHub:       hub,
	}
}

// InitiateSTKPush prompts the customer's phone for the sale's total.
// The sale is already committed at this point; no product lock is held
// across the gateway round-trip.
func (s *paymentService) InitiateSTKPush(ctx context.Context, in InitiatePaymentInput, actor Actor) (*model.PaymentRequest, error) {
	sale, err := s.saleRepo.FindByID(in.SaleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}

	reference := in.Reference
	if reference == "" {
		reference = fmt.Sprintf("SALE-%s", sale.ID)
	}

	// The gateway takes whole shillings; fractional totals round up so the
	// shop never undercharges.
	amount := sale.TotalPrice.Ceil().IntPart()

	resp, err := s.mpesaClient.STKPush(ctx, mpesa.STKPushInput{
		Amount:      amount,
		PhoneNumber: in.PhoneNumber,
		Reference:   reference,
		Description: "Sale Payment",
	})
	if err != nil {
		return nil, err
	}

	saleID := sale.ID
	payment := &model.PaymentRequest{
		SaleID:      &saleID,
		CheckoutID:  resp.CheckoutRequestID,
		Amount:      sale.TotalPrice,
		PhoneNumber: in.PhoneNumber,
		Reference:   reference,
		Status:      model.PaymentPending,
	}
	payment.CreatedBy = actor.ID
	payment.UpdatedBy = actor.ID

	if err := s.paymentRepo.Create(payment); err != nil {
		return nil, err
	}

	return payment, nil
}

// HandleCallback settles the pending request the gateway is reporting on.
func (s *paymentService) HandleCallback(body []byte) error {
	result, err := mpesa.ParseCallback(body)
	if err != nil {
		return err
	}

	payment, err := s.paymentRepo.FindByCheckoutID(result.CheckoutRequestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// A callback for a checkout we never recorded is an integrity
			// signal, not a client error.
			log.Printf("DATA INTEGRITY: payment callback for unknown checkout %s", result.CheckoutRequestID)
			return ErrPaymentNotFound
		}
		return err
	}

	status := model.PaymentFailed
	if result.Succeeded() {
		status = model.PaymentPaid
	}

	if err := s.paymentRepo.UpdateStatus(payment.ID, status, result.ResultDesc); err != nil {
		return err
	}

	go s.wsHub.Emit("payment_settled", map[string]interface{}{
		"payment_id":  payment.ID,
		"sale_id":     payment.SaleID,
		"checkout_id": payment.CheckoutID,
		"status":      status,
		"amount":      payment.Amount,
	})

	return nil
}
