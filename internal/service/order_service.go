package service

import (
	"errors"
	"fmt"
	"time"

	"fasalbajar-api/internal/model"
	"fasalbajar-api/internal/repository"
	"fasalbajar-api/internal/ws"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderItemNotFound   = errors.New("order item not found")
	ErrInvalidTransition   = errors.New("order item is no longer pending")
	ErrNotItemOwner        = errors.New("you do not own this order item")
	ErrInsufficientStock   = errors.New("insufficient product quantity")
	ErrEmptyOrder          = errors.New("order must contain at least one item")
	ErrNotOrderParticipant = errors.New("you are not part of this order")
)

type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

type CreateOrderRequest struct {
	Items           []OrderItemRequest  `json:"items"`
	PaymentMethod   model.PaymentMethod `json:"payment_method"`
	DeliveryAddress string              `json:"delivery_address"`
}

type OrderService interface {
	Create(buyerID uuid.UUID, req *CreateOrderRequest) (*model.Order, error)
	UpdateItemStatus(farmerID, itemID uuid.UUID, status model.ItemStatus, notes string) (*model.OrderItem, error)
	Get(userID, orderID uuid.UUID) (*model.Order, error)
	ListBuyerOrders(buyerID uuid.UUID) ([]model.Order, error)
	ListFarmerItems(farmerID uuid.UUID) ([]model.OrderItem, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	db          *gorm.DB
	wsHub       *ws.Hub
}

func NewOrderService(oRepo repository.OrderRepository, pRepo repository.ProductRepository, db *gorm.DB, hub *ws.Hub) OrderService {
	return &orderService{
		orderRepo:   oRepo,
		productRepo: pRepo,
		db:          db,
		wsHub:       hub,
	}
}

// Create resolves each (product, quantity) pair against the product row,
// snapshots the price, and creates the order with every item Pending.
// Stock is decremented in the same transaction so a concurrent order
// cannot oversell.
func (s *orderService) Create(buyerID uuid.UUID, req *CreateOrderRequest) (*model.Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	if req.PaymentMethod != model.PaymentCashOnDelivery && req.PaymentMethod != model.PaymentOnline {
		return nil, errors.New("invalid payment method")
	}

	var created *model.Order
	farmerIDs := map[uuid.UUID]bool{}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		order := &model.Order{
			BuyerID:         buyerID,
			Status:          model.OrderPending,
			PaymentMethod:   req.PaymentMethod,
			DeliveryAddress: req.DeliveryAddress,
			TotalAmount:     decimal.Zero,
		}

		items := make([]model.OrderItem, 0, len(req.Items))
		total := decimal.Zero

		for _, line := range req.Items {
			if line.Quantity <= 0 {
				return errors.New("quantity must be greater than zero")
			}

			var product model.Product
			if err := lockForUpdate(tx).
				First(&product, "id = ?", line.ProductID).Error; err != nil {
				return ErrProductNotFound
			}

			if product.Quantity < line.Quantity {
				return fmt.Errorf("%w: %s", ErrInsufficientStock, product.Name)
			}

			if err := s.productRepo.UpdateQuantity(tx, product.ID, product.Quantity-line.Quantity); err != nil {
				return err
			}

			subtotal := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			total = total.Add(subtotal)
			farmerIDs[product.FarmerID] = true

			items = append(items, model.OrderItem{
				ProductID: product.ID,
				FarmerID:  product.FarmerID,
				Quantity:  line.Quantity,
				Price:     product.Price,
				Subtotal:  subtotal,
				Status:    model.ItemPending,
			})
		}

		order.TotalAmount = total
		order.Items = items
		if err := s.orderRepo.Create(tx, order); err != nil {
			return err
		}

		created = order
		return nil
	})

	if err != nil {
		return nil, err
	}

	go func() {
		ids := make([]string, 0, len(farmerIDs))
		for id := range farmerIDs {
			ids = append(ids, id.String())
		}
		s.wsHub.NotifyUsers(ids, "order:new", map[string]interface{}{
			"order_id":     created.ID,
			"buyer_id":     buyerID,
			"total_amount": created.TotalAmount,
			"item_count":   len(created.Items),
		})
	}()

	return created, nil
}

// UpdateItemStatus moves one item out of Pending exactly once. Declining
// restores the reserved product quantity; the parent order status is
// recomputed afterwards.
func (s *orderService) UpdateItemStatus(farmerID, itemID uuid.UUID, status model.ItemStatus, notes string) (*model.OrderItem, error) {
	if status != model.ItemAccepted && status != model.ItemDeclined {
		return nil, errors.New("status must be Accepted or Declined")
	}

	var updated *model.OrderItem
	var buyerID uuid.UUID
	var orderStatus model.OrderStatus

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var item model.OrderItem
		if err := lockForUpdate(tx).
			First(&item, "id = ?", itemID).Error; err != nil {
			return ErrOrderItemNotFound
		}

		if item.FarmerID != farmerID {
			return ErrNotItemOwner
		}
		if item.Status != model.ItemPending {
			return ErrInvalidTransition
		}

		now := time.Now()
		item.Status = status
		item.FarmerNotes = notes
		item.StatusUpdatedAt = &now

		if err := s.orderRepo.SaveItem(tx, &item); err != nil {
			return err
		}

		if status == model.ItemDeclined {
			var product model.Product
			if err := tx.First(&product, "id = ?", item.ProductID).Error; err == nil {
				if err := s.productRepo.UpdateQuantity(tx, product.ID, product.Quantity+item.Quantity); err != nil {
					return err
				}
			}
		}

		// read siblings through tx so the update above is visible
		var siblings []model.OrderItem
		if err := tx.Where("order_id = ?", item.OrderID).Find(&siblings).Error; err != nil {
			return err
		}
		orderStatus = model.DeriveOrderStatus(siblings)
		if err := s.orderRepo.UpdateStatus(tx, item.OrderID, orderStatus); err != nil {
			return err
		}

		var order model.Order
		if err := tx.First(&order, "id = ?", item.OrderID).Error; err != nil {
			return err
		}
		buyerID = order.BuyerID

		updated = &item
		return nil
	})

	if err != nil {
		return nil, err
	}

	go s.wsHub.NotifyUser(buyerID.String(), "order:item_status", map[string]interface{}{
		"order_id":     updated.OrderID,
		"item_id":      updated.ID,
		"status":       updated.Status,
		"farmer_notes": updated.FarmerNotes,
		"order_status": orderStatus,
	})

	return updated, nil
}

func (s *orderService) Get(userID, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}

	if order.BuyerID == userID {
		return order, nil
	}
	for _, item := range order.Items {
		if item.FarmerID == userID {
			return order, nil
		}
	}
	return nil, ErrNotOrderParticipant
}

func (s *orderService) ListBuyerOrders(buyerID uuid.UUID) ([]model.Order, error) {
	return s.orderRepo.FindByBuyer(buyerID)
}

func (s *orderService) ListFarmerItems(farmerID uuid.UUID) ([]model.OrderItem, error) {
	return s.orderRepo.FindItemsByFarmer(farmerID)
}
