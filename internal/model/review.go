package model

import "github.com/google/uuid"

// Review is a buyer's rating of a farmer or supplier, optionally tied to
// the product and order it came from. The target is always a user,
// regardless of role.
type Review struct {
	BaseModel
	AuthorID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"author_id"`
	Author       *User      `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	TargetUserID uuid.UUID  `gorm:"type:uuid;not null;index" json:"target_user_id" validate:"uuid_required"`
	TargetUser   *User      `gorm:"foreignKey:TargetUserID" json:"target_user,omitempty"`
	ProductID    *uuid.UUID `gorm:"type:uuid;index" json:"product_id,omitempty"`
	OrderID      *uuid.UUID `gorm:"type:uuid;index" json:"order_id,omitempty"`
	Rating       int        `gorm:"not null" json:"rating" validate:"required,gte=1,lte=5"`
	Comment      string     `gorm:"type:text" json:"comment"`
}
