package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a listing owned by a farmer or supplier. Quantity is the
// stock still available for ordering.
type Product struct {
	BaseModel
	FarmerID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"farmer_id"`
	Farmer      *User           `gorm:"foreignKey:FarmerID" json:"farmer,omitempty" validate:"-"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Description string          `gorm:"type:text" json:"description"`
	Category    string          `gorm:"type:varchar(100);index" json:"category" validate:"required"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Quantity    int             `gorm:"not null;default:0" json:"quantity" validate:"gte=0"`
	Unit        string          `gorm:"type:varchar(20)" json:"unit"`
	ImageURL    string          `gorm:"type:varchar(512)" json:"image_url"`
}
