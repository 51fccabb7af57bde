package entity

import "time"

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityMembers Visibility = "members"
	VisibilityPPV     Visibility = "ppv"
)

func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityMembers, VisibilityPPV:
		return true
	}
	return false
}

type MediaType string

const (
	MediaTypeNone  MediaType = ""
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

type Post struct {
	ID         string     `json:"id"`
	CreatorID  string     `json:"creator_id"`
	Title      string     `json:"title"`
	Content    *string    `json:"content"`
	MediaURL   *string    `json:"media_url"`
	MediaType  MediaType  `json:"media_type,omitempty"`
	Visibility Visibility `json:"visibility"`
	Price      int64      `json:"price"`
	Likes      int        `json:"likes"`
	Published  bool       `json:"published"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// PostView is a post as shown to one viewer: either the full post or its
// redacted form.
type PostView struct {
	Post
	IsLocked       bool   `json:"is_locked"`
	IsCreatorOwner bool   `json:"is_creator_owner"`
	UnlockPrice    *int64 `json:"unlock_price,omitempty"`
}

type Like struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
