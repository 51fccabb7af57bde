package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// At most one active row per (supporter_id, creator_id) is enforced by the
// partial index idx_subscriptions_active_pair, created in migrations.
type SubscriptionModel struct {
	ID          string    `gorm:"type:uuid;primary_key" json:"id"`
	SupporterID string    `gorm:"type:uuid;not null;index:idx_subscriptions_pair" json:"supporter_id"`
	CreatorID   string    `gorm:"type:uuid;not null;index:idx_subscriptions_pair;index" json:"creator_id"`
	TierID      string    `gorm:"type:varchar(64)" json:"tier_id"`
	Amount      int64     `gorm:"not null" json:"amount"`
	StartDate   time.Time `gorm:"not null" json:"start_date"`
	EndDate     time.Time `gorm:"not null" json:"end_date"`
	Active      bool      `gorm:"not null" json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (SubscriptionModel) TableName() string {
	return "subscriptions"
}

func (s *SubscriptionModel) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

type TipModel struct {
	ID          string    `gorm:"type:uuid;primary_key" json:"id"`
	SupporterID string    `gorm:"type:uuid;not null;index" json:"supporter_id"`
	CreatorID   *string   `gorm:"type:uuid;index" json:"creator_id"`
	PostID      *string   `gorm:"type:uuid;index" json:"post_id"`
	Amount      int64     `gorm:"not null" json:"amount"`
	Message     string    `gorm:"type:text" json:"message"`
	CreatedAt   time.Time `json:"created_at"`
}

func (TipModel) TableName() string {
	return "tips"
}

func (t *TipModel) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

type PostUnlockModel struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	PostID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_post_unlocks_post_user" json:"post_id"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_post_unlocks_post_user;index" json:"user_id"`
	TipID     string    `gorm:"type:uuid;not null;uniqueIndex" json:"tip_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (PostUnlockModel) TableName() string {
	return "post_unlocks"
}

func (u *PostUnlockModel) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}
