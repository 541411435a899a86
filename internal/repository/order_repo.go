package repository

import (
	"fasalbajar-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(tx *gorm.DB, order *model.Order) error
	FindByID(id uuid.UUID) (*model.Order, error)
	FindByBuyer(buyerID uuid.UUID) ([]model.Order, error)
	FindItemByID(id uuid.UUID) (*model.OrderItem, error)
	FindItemsByOrder(orderID uuid.UUID) ([]model.OrderItem, error)
	FindItemsByFarmer(farmerID uuid.UUID) ([]model.OrderItem, error)
	SaveItem(tx *gorm.DB, item *model.OrderItem) error
	UpdateStatus(tx *gorm.DB, orderID uuid.UUID, status model.OrderStatus) error
	MarkPaymentSettled(tx *gorm.DB, orderID uuid.UUID) error
}

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) OrderRepository {
	return &orderRepo{db}
}

func (r *orderRepo) Create(tx *gorm.DB, order *model.Order) error {
	return tx.Create(order).Error
}

func (r *orderRepo) FindByID(id uuid.UUID) (*model.Order, error) {
	var order model.Order
	err := r.db.
		Preload("Buyer").
		Preload("Items").
		Preload("Items.Product").
		Preload("Items.Farmer").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) FindByBuyer(buyerID uuid.UUID) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.
		Preload("Items").
		Preload("Items.Product").
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepo) FindItemByID(id uuid.UUID) (*model.OrderItem, error) {
	var item model.OrderItem
	err := r.db.Preload("Product").First(&item, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *orderRepo) FindItemsByOrder(orderID uuid.UUID) ([]model.OrderItem, error) {
	var items []model.OrderItem
	err := r.db.Where("order_id = ?", orderID).Find(&items).Error
	return items, err
}

func (r *orderRepo) FindItemsByFarmer(farmerID uuid.UUID) ([]model.OrderItem, error) {
	var items []model.OrderItem
	err := r.db.
		Preload("Product").
		Where("farmer_id = ?", farmerID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

func (r *orderRepo) SaveItem(tx *gorm.DB, item *model.OrderItem) error {
	return tx.Save(item).Error
}

func (r *orderRepo) UpdateStatus(tx *gorm.DB, orderID uuid.UUID, status model.OrderStatus) error {
	return tx.Model(&model.Order{}).Where("id = ?", orderID).Update("status", status).Error
}

func (r *orderRepo) MarkPaymentSettled(tx *gorm.DB, orderID uuid.UUID) error {
	return tx.Model(&model.Order{}).Where("id = ?", orderID).Update("payment_settled", true).Error
}
