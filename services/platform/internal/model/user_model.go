package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserModel struct {
	ID             string    `gorm:"type:uuid;primary_key" json:"id"`
	Email          string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash   string    `gorm:"type:varchar(255);not null" json:"-"`
	DisplayName    string    `gorm:"type:varchar(100)" json:"display_name"`
	Role           string    `gorm:"type:varchar(20);not null;default:'supporter'" json:"role"`
	WalletAddress  *string   `gorm:"type:varchar(64);uniqueIndex" json:"wallet_address"`
	WalletVerified bool      `gorm:"default:false" json:"wallet_verified"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (UserModel) TableName() string {
	return "users"
}

func (u *UserModel) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

type WalletNonceModel struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	Address   string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"address"`
	Nonce     string    `gorm:"type:varchar(128);not null" json:"nonce"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (WalletNonceModel) TableName() string {
	return "wallet_nonces"
}

func (n *WalletNonceModel) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return nil
}
