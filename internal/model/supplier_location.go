package model

import "github.com/google/uuid"

// SupplierLocation is a service area advertised by a supplier.
type SupplierLocation struct {
	BaseModel
	SupplierID     uuid.UUID `gorm:"type:uuid;not null;index" json:"supplier_id" validate:"uuid_required"`
	Supplier       *User     `gorm:"foreignKey:SupplierID" json:"supplier,omitempty" validate:"-"`
	District       string    `gorm:"type:varchar(100);not null;index" json:"district" validate:"required"`
	Municipality   string    `gorm:"type:varchar(100)" json:"municipality"`
	Ward           int       `json:"ward"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	ServiceDetails string    `gorm:"type:text" json:"service_details"`
}
