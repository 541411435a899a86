package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "Pending"
	OrderProcessing OrderStatus = "Processing"
	OrderCancelled  OrderStatus = "Cancelled"
)

type ItemStatus string

const (
	ItemPending  ItemStatus = "Pending"
	ItemAccepted ItemStatus = "Accepted"
	ItemDeclined ItemStatus = "Declined"
)

// Order aggregates the items a buyer checked out in one go. Its status is
// derived from the item statuses and recomputed after every item
// transition.
type Order struct {
	BaseModel
	BuyerID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"buyer_id"`
	Buyer           *User           `gorm:"foreignKey:BuyerID" json:"buyer,omitempty"`
	Status          OrderStatus     `gorm:"type:varchar(20);not null;default:'Pending'" json:"status"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	PaymentMethod   PaymentMethod   `gorm:"type:varchar(30);not null" json:"payment_method"`
	PaymentSettled  bool            `gorm:"default:false" json:"payment_settled"`
	DeliveryAddress string          `gorm:"type:varchar(255)" json:"delivery_address"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// OrderItem is one line of an Order tied to a single product and its
// owning farmer. Each item moves through its own accept/decline
// lifecycle; once it leaves Pending it never transitions again.
type OrderItem struct {
	BaseModel
	OrderID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Product         *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	FarmerID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"farmer_id"`
	Farmer          *User           `gorm:"foreignKey:FarmerID" json:"farmer,omitempty"`
	Quantity        int             `gorm:"not null" json:"quantity"`
	Price           decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Subtotal        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	Status          ItemStatus      `gorm:"type:varchar(20);not null;default:'Pending'" json:"status"`
	FarmerNotes     string          `gorm:"type:text" json:"farmer_notes"`
	StatusUpdatedAt *time.Time      `json:"status_updated_at,omitempty"`
}

// DeriveOrderStatus computes the aggregate order status from its items:
// every item declined means the order is cancelled, every item resolved
// with at least one accepted means it is processing, and any item still
// pending keeps the order pending.
func DeriveOrderStatus(items []OrderItem) OrderStatus {
	accepted := 0
	declined := 0
	for _, it := range items {
		switch it.Status {
		case ItemAccepted:
			accepted++
		case ItemDeclined:
			declined++
		}
	}
	if len(items) == 0 || accepted+declined < len(items) {
		return OrderPending
	}
	if accepted == 0 {
		return OrderCancelled
	}
	return OrderProcessing
}
