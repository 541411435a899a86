package model

import (
	"time"

	"github.com/google/uuid"
)

// Message is a direct message between two users. Delivery over the
// websocket relay is best-effort; the row is the source of truth.
type Message struct {
	BaseModel
	SenderID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"sender_id"`
	Sender     *User      `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	ReceiverID uuid.UUID  `gorm:"type:uuid;not null;index" json:"receiver_id" validate:"uuid_required"`
	Receiver   *User      `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`
	Content    string     `gorm:"type:text;not null" json:"content" validate:"required"`
	Read       bool       `gorm:"default:false" json:"read"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
}
