package entity

import "time"

type Subscription struct {
	ID          string    `json:"id"`
	SupporterID string    `json:"supporter_id"`
	CreatorID   string    `json:"creator_id"`
	TierID      string    `json:"tier_id"`
	Amount      int64     `json:"amount"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Tip struct {
	ID          string    `json:"id"`
	SupporterID string    `json:"supporter_id"`
	CreatorID   *string   `json:"creator_id,omitempty"`
	PostID      *string   `json:"post_id,omitempty"`
	Amount      int64     `json:"amount"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"created_at"`
}

// PostUnlock is the entitlement proof for one ppv post, paid by TipID.
type PostUnlock struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	TipID     string    `json:"tip_id"`
	CreatedAt time.Time `json:"created_at"`
}
