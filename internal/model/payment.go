package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "Cash on Delivery"
	PaymentOnline         PaymentMethod = "Online Payment"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "Pending"
	PaymentCompleted PaymentStatus = "Completed"
	PaymentFailed    PaymentStatus = "Failed"
	PaymentRefunded  PaymentStatus = "Refunded"
)

// PaymentTransaction records a single payment attempt/settlement for an
// order. Reference is the merchant-generated transaction id sent to the
// gateway; GatewayRef is the code the gateway reports back. Status moves
// Pending to Completed or Failed, and Completed to Refunded, never
// anything else.
type PaymentTransaction struct {
	BaseModel
	OrderID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	Order      *Order          `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	Reference  string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"reference"`
	Amount     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Method     PaymentMethod   `gorm:"type:varchar(30);not null" json:"method"`
	Status     PaymentStatus   `gorm:"type:varchar(20);not null;default:'Pending'" json:"status"`
	GatewayRef string          `gorm:"type:varchar(64)" json:"gateway_ref"`
	PaidAt     *time.Time      `json:"paid_at,omitempty"`
}
