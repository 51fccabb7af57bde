package entity

import "time"

type Tier struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Price int64    `json:"price"`
	Perks []string `json:"perks"`
}

// Creator is the public profile a user opens to receive subscriptions and
// tips. SubscriberCount counts acquisitions and is never decremented;
// currently active subscribers must be recomputed from subscriptions.
type Creator struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Handle          string    `json:"handle"`
	DisplayName     string    `json:"display_name"`
	Bio             string    `json:"bio"`
	FandomName      string    `json:"fandom_name"`
	Tiers           []Tier    `json:"tiers"`
	TotalEarnings   int64     `json:"total_earnings"`
	SubscriberCount int       `json:"subscriber_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (c *Creator) Tier(id string) (Tier, bool) {
	for _, t := range c.Tiers {
		if t.ID == id {
			return t, true
		}
	}
	return Tier{}, false
}
