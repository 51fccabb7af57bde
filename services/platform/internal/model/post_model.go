package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostModel struct {
	ID         string    `gorm:"type:uuid;primary_key" json:"id"`
	CreatorID  string    `gorm:"type:uuid;not null;index" json:"creator_id"`
	Title      string    `gorm:"type:varchar(255);not null" json:"title"`
	Content    *string   `gorm:"type:text" json:"content"`
	MediaURL   *string   `gorm:"type:varchar(500)" json:"media_url"`
	MediaType  string    `gorm:"type:varchar(10)" json:"media_type"`
	Visibility string    `gorm:"type:varchar(10);not null;default:'public'" json:"visibility"`
	Price      int64     `gorm:"not null;default:0" json:"price"`
	Likes      int       `gorm:"not null;default:0" json:"likes"`
	Published  bool      `gorm:"not null" json:"published"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (PostModel) TableName() string {
	return "posts"
}

func (p *PostModel) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

type LikeModel struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	PostID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_likes_post_user" json:"post_id"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_likes_post_user;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (LikeModel) TableName() string {
	return "likes"
}

func (l *LikeModel) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}
