package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConversationModel struct {
	ID            string    `gorm:"type:uuid;primary_key" json:"id"`
	ParticipantA  string    `gorm:"type:uuid;not null;uniqueIndex:idx_conversations_pair" json:"participant_a"`
	ParticipantB  string    `gorm:"type:uuid;not null;uniqueIndex:idx_conversations_pair;index" json:"participant_b"`
	LastMessageAt time.Time `gorm:"index" json:"last_message_at"`
	CreatedAt     time.Time `json:"created_at"`
}

func (ConversationModel) TableName() string {
	return "conversations"
}

func (c *ConversationModel) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

type MessageModel struct {
	ID             string    `gorm:"type:uuid;primary_key" json:"id"`
	ConversationID string    `gorm:"type:uuid;not null;index" json:"conversation_id"`
	SenderID       string    `gorm:"type:uuid;not null" json:"sender_id"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	Read           bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
}

func (MessageModel) TableName() string {
	return "messages"
}

func (m *MessageModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}
