package persistent

import (
	"testing"
	"time"

	"fanvault/services/platform/internal/entity"

	"github.com/stretchr/testify/assert"
)

func TestCreatorMapper(t *testing.T) {
	now := time.Now().UTC()
	creator := &entity.Creator{
		ID:              "c1",
		UserID:          "u1",
		Handle:          "ava",
		FandomName:      "Avatars",
		Tiers:           []entity.Tier{{ID: "gold", Name: "Gold", Price: 1000, Perks: []string{"dm"}}},
		TotalEarnings:   2500,
		SubscriberCount: 3,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	back := ToCreatorEntity(ToCreatorModel(creator))
	assert.Equal(t, creator, back)
}

func TestPostMapper(t *testing.T) {
	content := "hello"
	post := &entity.Post{
		ID:         "p1",
		CreatorID:  "c1",
		Title:      "t",
		Content:    &content,
		MediaType:  entity.MediaTypeImage,
		Visibility: entity.VisibilityMembers,
		Published:  true,
	}

	m := ToPostModel(post)
	assert.Equal(t, "members", m.Visibility)
	assert.Equal(t, "image", m.MediaType)
	assert.Equal(t, post, ToPostEntity(m))
}

func TestMappers_Nil(t *testing.T) {
	assert.Nil(t, ToUserEntity(nil))
	assert.Nil(t, ToCreatorModel(nil))
	assert.Nil(t, ToPostEntity(nil))
	assert.Nil(t, ToSubscriptionModel(nil))
	assert.Nil(t, ToCommentEntity(nil))
}
