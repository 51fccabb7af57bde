package entity

import "time"

type UserRole string

const (
	RoleCreator   UserRole = "creator"
	RoleSupporter UserRole = "supporter"
)

type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	DisplayName    string    `json:"display_name"`
	Role           UserRole  `json:"role"`
	WalletAddress  *string   `json:"wallet_address,omitempty"`
	WalletVerified bool      `json:"wallet_verified"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type WalletNonce struct {
	ID        string    `json:"id"`
	Address   string    `json:"address"`
	Nonce     string    `json:"nonce"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
