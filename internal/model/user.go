package model

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Role string

const (
	RoleFarmer   Role = "Farmer"
	RoleSupplier Role = "Supplier"
	RoleBuyer    Role = "Buyer"
	RoleAdmin    Role = "Admin"
)

// User represents any account in the marketplace. Accounts are never
// hard-deleted; IsBlocked gates access instead.
type User struct {
	BaseModel
	FullName    string `gorm:"type:varchar(255);not null" json:"full_name" validate:"required"`
	Email       string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email" validate:"required,email"`
	Password    string `gorm:"type:varchar(255);not null" json:"-"`
	Role        Role   `gorm:"type:varchar(20);not null" json:"role" validate:"required,oneof=Farmer Supplier Buyer Admin"`
	PhoneNumber string `gorm:"type:varchar(20)" json:"phone_number"`
	Address     string `gorm:"type:varchar(255)" json:"address"`
	District    string `gorm:"type:varchar(100)" json:"district"`
	AvatarURL   string `gorm:"type:varchar(512)" json:"avatar_url"`
	IsBlocked   bool   `gorm:"default:false" json:"is_blocked"`
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// UserResponse is used for API responses (without sensitive data)
type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	FullName    string    `json:"full_name"`
	Email       string    `json:"email"`
	Role        Role      `json:"role"`
	PhoneNumber string    `json:"phone_number"`
	Address     string    `json:"address"`
	District    string    `json:"district"`
	AvatarURL   string    `json:"avatar_url"`
	IsBlocked   bool      `json:"is_blocked"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:          u.ID,
		FullName:    u.FullName,
		Email:       u.Email,
		Role:        u.Role,
		PhoneNumber: u.PhoneNumber,
		Address:     u.Address,
		District:    u.District,
		AvatarURL:   u.AvatarURL,
		IsBlocked:   u.IsBlocked,
		CreatedAt:   u.CreatedAt,
	}
}
