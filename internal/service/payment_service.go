package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"fasalbajar-api/internal/gateway"
	"fasalbajar-api/internal/model"
	"fasalbajar-api/internal/repository"
	"fasalbajar-api/internal/ws"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrPaymentNotFound   = errors.New("payment transaction not found")
	ErrTamperedPayment   = errors.New("payment verification failed: signature mismatch")
	ErrNotOnlineOrder    = errors.New("order is not an online payment order")
	ErrNotOrderBuyer     = errors.New("you are not the buyer of this order")
	ErrPaymentNotPending = errors.New("payment transaction is not pending")
	ErrNotRefundable     = errors.New("only completed payments can be refunded")
	ErrAmountMismatch    = errors.New("payment verification failed: amount mismatch")
)

type PaymentService interface {
	Initiate(buyerID, orderID uuid.UUID) (*gateway.PaymentForm, *model.PaymentTransaction, error)
	HandleCallback(data string) (*model.PaymentTransaction, error)
	CheckStatus(ctx context.Context, buyerID, orderID uuid.UUID) (*model.PaymentTransaction, error)
	CompleteCashOnDelivery(orderID uuid.UUID) (*model.PaymentTransaction, error)
	Refund(transactionID uuid.UUID) (*model.PaymentTransaction, error)
	ListByOrder(buyerID, orderID uuid.UUID) ([]model.PaymentTransaction, error)
}

type paymentService struct {
	paymentRepo repository.PaymentRepository
	orderRepo   repository.OrderRepository
	gateway     *gateway.Client
	db          *gorm.DB
	wsHub       *ws.Hub
}

func NewPaymentService(pRepo repository.PaymentRepository, oRepo repository.OrderRepository, gw *gateway.Client, db *gorm.DB, hub *ws.Hub) PaymentService {
	return &paymentService{
		paymentRepo: pRepo,
		orderRepo:   oRepo,
		gateway:     gw,
		db:          db,
		wsHub:       hub,
	}
}

// Initiate builds the signed gateway form for an online-payment order.
// An existing pending transaction for the order is reused so a buyer
// retrying checkout does not pile up references.
func (s *paymentService) Initiate(buyerID, orderID uuid.UUID) (*gateway.PaymentForm, *model.PaymentTransaction, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		return nil, nil, ErrOrderNotFound
	}
	if order.BuyerID != buyerID {
		return nil, nil, ErrNotOrderBuyer
	}
	if order.PaymentMethod != model.PaymentOnline {
		return nil, nil, ErrNotOnlineOrder
	}

	txn, err := s.paymentRepo.FindPendingByOrder(orderID)
	if err != nil {
		txn = &model.PaymentTransaction{
			OrderID:   orderID,
			Reference: uuid.New().String(),
			Amount:    order.TotalAmount,
			Method:    model.PaymentOnline,
			Status:    model.PaymentPending,
		}
		if err := s.paymentRepo.Create(txn); err != nil {
			return nil, nil, err
		}
	}

	form := s.gateway.BuildPaymentForm(txn.Amount, txn.Reference)
	return &form, txn, nil
}

// HandleCallback verifies the gateway signature and settles the
// transaction. A replayed callback for an already-completed transaction
// is a no-op success; a tampered one never touches state.
func (s *paymentService) HandleCallback(data string) (*model.PaymentTransaction, error) {
	payload, err := gateway.DecodeCallback(data)
	if err != nil {
		return nil, err
	}
	if err := s.gateway.VerifyCallback(payload); err != nil {
		if errors.Is(err, gateway.ErrInvalidSignature) || errors.Is(err, gateway.ErrProductCodeMismatch) {
			return nil, ErrTamperedPayment
		}
		return nil, err
	}

	var settled *model.PaymentTransaction
	var orderID uuid.UUID
	var completedNow bool

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var txn model.PaymentTransaction
		if err := lockForUpdate(tx).
			First(&txn, "reference = ?", payload.TransactionUUID).Error; err != nil {
			return ErrPaymentNotFound
		}

		// idempotent replay: already settled, nothing to do
		if txn.Status != model.PaymentPending {
			settled = &txn
			return nil
		}

		switch payload.Status {
		case gateway.StatusComplete:
			// the gateway formats amounts with thousands separators
			paid, perr := decimal.NewFromString(strings.ReplaceAll(payload.TotalAmount, ",", ""))
			if perr != nil || !paid.Equal(txn.Amount) {
				return ErrAmountMismatch
			}
			now := time.Now()
			txn.Status = model.PaymentCompleted
			txn.GatewayRef = payload.TransactionCode
			txn.PaidAt = &now
			completedNow = true
			if err := s.orderRepo.MarkPaymentSettled(tx, txn.OrderID); err != nil {
				return err
			}
		case gateway.StatusCanceled, gateway.StatusNotFound:
			txn.Status = model.PaymentFailed
		default:
			// PENDING and friends leave the transaction untouched
			settled = &txn
			return nil
		}

		if err := s.paymentRepo.Save(tx, &txn); err != nil {
			return err
		}
		orderID = txn.OrderID
		settled = &txn
		return nil
	})

	if err != nil {
		return nil, err
	}

	if completedNow {
		go func() {
			if order, err := s.orderRepo.FindByID(orderID); err == nil {
				s.wsHub.NotifyUser(order.BuyerID.String(), "payment:completed", map[string]interface{}{
					"order_id":  orderID,
					"reference": settled.Reference,
					"amount":    settled.Amount,
				})
			}
		}()
	}

	return settled, nil
}

// CheckStatus re-queries the gateway for a still-pending transaction.
// Only the order's buyer may ask. Network errors and timeouts leave it
// Pending.
func (s *paymentService) CheckStatus(ctx context.Context, buyerID, orderID uuid.UUID) (*model.PaymentTransaction, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	if order.BuyerID != buyerID {
		return nil, ErrNotOrderBuyer
	}

	txn, err := s.paymentRepo.FindPendingByOrder(orderID)
	if err != nil {
		// nothing pending; report the latest transaction instead
		txns, ferr := s.paymentRepo.FindByOrder(orderID)
		if ferr != nil || len(txns) == 0 {
			return nil, ErrPaymentNotFound
		}
		return &txns[0], nil
	}

	status, err := s.gateway.CheckStatus(ctx, txn.Reference, txn.Amount)
	if err != nil {
		return nil, err
	}

	switch status.Status {
	case gateway.StatusComplete:
		now := time.Now()
		txn.Status = model.PaymentCompleted
		txn.GatewayRef = status.RefID
		txn.PaidAt = &now
		err = s.db.Transaction(func(tx *gorm.DB) error {
			if err := s.paymentRepo.Save(tx, txn); err != nil {
				return err
			}
			return s.orderRepo.MarkPaymentSettled(tx, txn.OrderID)
		})
		if err != nil {
			return nil, err
		}
	case gateway.StatusCanceled, gateway.StatusNotFound:
		txn.Status = model.PaymentFailed
		if err := s.paymentRepo.Save(s.db, txn); err != nil {
			return nil, err
		}
	}

	return txn, nil
}

// CompleteCashOnDelivery settles a COD transaction manually, creating
// the transaction row on first settlement.
func (s *paymentService) CompleteCashOnDelivery(orderID uuid.UUID) (*model.PaymentTransaction, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	if order.PaymentMethod != model.PaymentCashOnDelivery {
		return nil, errors.New("order is not cash on delivery")
	}

	// settling twice must not mint a second transaction
	existing, _ := s.paymentRepo.FindByOrder(orderID)
	for i := range existing {
		if existing[i].Status != model.PaymentPending {
			return nil, ErrPaymentNotPending
		}
	}

	txn, err := s.paymentRepo.FindPendingByOrder(orderID)
	if err != nil {
		txn = &model.PaymentTransaction{
			OrderID:   orderID,
			Reference: uuid.New().String(),
			Amount:    order.TotalAmount,
			Method:    model.PaymentCashOnDelivery,
			Status:    model.PaymentPending,
		}
		if err := s.paymentRepo.Create(txn); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	txn.Status = model.PaymentCompleted
	txn.PaidAt = &now
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.paymentRepo.Save(tx, txn); err != nil {
			return err
		}
		return s.orderRepo.MarkPaymentSettled(tx, orderID)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// Refund moves a completed transaction to Refunded.
func (s *paymentService) Refund(transactionID uuid.UUID) (*model.PaymentTransaction, error) {
	txn, err := s.paymentRepo.FindByID(transactionID)
	if err != nil {
		return nil, ErrPaymentNotFound
	}
	if txn.Status != model.PaymentCompleted {
		return nil, ErrNotRefundable
	}

	txn.Status = model.PaymentRefunded
	if err := s.paymentRepo.Save(s.db, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// ListByOrder lists an order's payment attempts for its buyer.
func (s *paymentService) ListByOrder(buyerID, orderID uuid.UUID) ([]model.PaymentTransaction, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	if order.BuyerID != buyerID {
		return nil, ErrNotOrderBuyer
	}
	return s.paymentRepo.FindByOrder(orderID)
}
