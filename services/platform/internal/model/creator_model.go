package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TierModel struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Price int64    `json:"price"`
	Perks []string `json:"perks"`
}

type CreatorModel struct {
	ID              string      `gorm:"type:uuid;primary_key" json:"id"`
	UserID          string      `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Handle          string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"handle"`
	DisplayName     string      `gorm:"type:varchar(100)" json:"display_name"`
	Bio             string      `gorm:"type:text" json:"bio"`
	FandomName      string      `gorm:"type:varchar(100)" json:"fandom_name"`
	Tiers           []TierModel `gorm:"type:text;serializer:json" json:"tiers"`
	TotalEarnings   int64       `gorm:"not null;default:0" json:"total_earnings"`
	SubscriberCount int         `gorm:"not null;default:0" json:"subscriber_count"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

func (CreatorModel) TableName() string {
	return "creators"
}

func (c *CreatorModel) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}
