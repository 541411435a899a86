package repository

import (
	"fasalbajar-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(txn *model.PaymentTransaction) error
	FindByID(id uuid.UUID) (*model.PaymentTransaction, error)
	FindByReference(reference string) (*model.PaymentTransaction, error)
	FindPendingByOrder(orderID uuid.UUID) (*model.PaymentTransaction, error)
	FindByOrder(orderID uuid.UUID) ([]model.PaymentTransaction, error)
	Save(tx *gorm.DB, txn *model.PaymentTransaction) error
}

type paymentRepo struct {
	db *gorm.DB
}

func NewPaymentRepo(db *gorm.DB) PaymentRepository {
	return &paymentRepo{db}
}

func (r *paymentRepo) Create(txn *model.PaymentTransaction) error {
	return r.db.Create(txn).Error
}

func (r *paymentRepo) FindByID(id uuid.UUID) (*model.PaymentTransaction, error) {
	var txn model.PaymentTransaction
	if err := r.db.First(&txn, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *paymentRepo) FindByReference(reference string) (*model.PaymentTransaction, error) {
	var txn model.PaymentTransaction
	if err := r.db.First(&txn, "reference = ?", reference).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *paymentRepo) FindPendingByOrder(orderID uuid.UUID) (*model.PaymentTransaction, error) {
	var txn model.PaymentTransaction
	err := r.db.
		Where("order_id = ? AND status = ?", orderID, model.PaymentPending).
		Order("created_at DESC").
		First(&txn).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *paymentRepo) FindByOrder(orderID uuid.UUID) ([]model.PaymentTransaction, error) {
	var txns []model.PaymentTransaction
	err := r.db.Where("order_id = ?", orderID).Order("created_at DESC").Find(&txns).Error
	return txns, err
}

func (r *paymentRepo) Save(tx *gorm.DB, txn *model.PaymentTransaction) error {
	return tx.Save(txn).Error
}
