package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type idAssigner interface {
	BeforeCreate(tx *gorm.DB) error
}

func TestBeforeCreate_AssignsID(t *testing.T) {
	cases := map[string]idAssigner{
		"user":         &UserModel{Email: "a@example.com"},
		"wallet nonce": &WalletNonceModel{Address: "0xabc"},
		"creator":      &CreatorModel{Handle: "ava"},
		"post":         &PostModel{Title: "hello"},
		"like":         &LikeModel{PostID: "p", UserID: "u"},
		"subscription": &SubscriptionModel{SupporterID: "s", CreatorID: "c"},
		"tip":          &TipModel{SupporterID: "s", Amount: 100},
		"unlock":       &PostUnlockModel{PostID: "p", UserID: "u"},
		"comment":      &CommentModel{Content: "hi"},
		"vote":         &CommentVoteModel{VoteType: "upvote"},
		"conversation": &ConversationModel{ParticipantA: "a", ParticipantB: "b"},
		"message":      &MessageModel{Content: "hey"},
	}

	for name, record := range cases {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, record.BeforeCreate(nil))
			assert.NotEmpty(t, idOf(record))
		})
	}
}

func TestBeforeCreate_KeepsExistingID(t *testing.T) {
	post := &PostModel{ID: "existing-post-id", Title: "Test Post"}
	assert.NoError(t, post.BeforeCreate(nil))
	assert.Equal(t, "existing-post-id", post.ID)

	sub := &SubscriptionModel{ID: "existing-sub-id"}
	assert.NoError(t, sub.BeforeCreate(nil))
	assert.Equal(t, "existing-sub-id", sub.ID)
}

func TestTableNames(t *testing.T) {
	assert.Equal(t, "users", UserModel{}.TableName())
	assert.Equal(t, "creators", CreatorModel{}.TableName())
	assert.Equal(t, "posts", PostModel{}.TableName())
	assert.Equal(t, "subscriptions", SubscriptionModel{}.TableName())
	assert.Equal(t, "post_unlocks", PostUnlockModel{}.TableName())
	assert.Equal(t, "comment_votes", CommentVoteModel{}.TableName())
}

func idOf(r idAssigner) string {
	switch m := r.(type) {
	case *UserModel:
		return m.ID
	case *WalletNonceModel:
		return m.ID
	case *CreatorModel:
		return m.ID
	case *PostModel:
		return m.ID
	case *LikeModel:
		return m.ID
	case *SubscriptionModel:
		return m.ID
	case *TipModel:
		return m.ID
	case *PostUnlockModel:
		return m.ID
	case *CommentModel:
		return m.ID
	case *CommentVoteModel:
		return m.ID
	case *ConversationModel:
		return m.ID
	case *MessageModel:
		return m.ID
	}
	return ""
}
