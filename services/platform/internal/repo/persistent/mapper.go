package persistent

import (
	"fanvault/services/platform/internal/entity"
	"fanvault/services/platform/internal/model"
)

func ToUserEntity(m *model.UserModel) *entity.User {
	if m == nil {
		return nil
	}

	return &entity.User{
		ID:             m.ID,
		Email:          m.Email,
		PasswordHash:   m.PasswordHash,
		DisplayName:    m.DisplayName,
		Role:           entity.UserRole(m.Role),
		WalletAddress:  m.WalletAddress,
		WalletVerified: m.WalletVerified,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func ToUserModel(e *entity.User) *model.UserModel {
	if e == nil {
		return nil
	}

	return &model.UserModel{
		ID:             e.ID,
		Email:          e.Email,
		PasswordHash:   e.PasswordHash,
		DisplayName:    e.DisplayName,
		Role:           string(e.Role),
		WalletAddress:  e.WalletAddress,
		WalletVerified: e.WalletVerified,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func ToWalletNonceEntity(m *model.WalletNonceModel) *entity.WalletNonce {
	if m == nil {
		return nil
	}

	return &entity.WalletNonce{
		ID:        m.ID,
		Address:   m.Address,
		Nonce:     m.Nonce,
		ExpiresAt: m.ExpiresAt,
		CreatedAt: m.CreatedAt,
	}
}

func ToCreatorEntity(m *model.CreatorModel) *entity.Creator {
	if m == nil {
		return nil
	}

	creator := &entity.Creator{
		ID:              m.ID,
		UserID:          m.UserID,
		Handle:          m.Handle,
		DisplayName:     m.DisplayName,
		Bio:             m.Bio,
		FandomName:      m.FandomName,
		TotalEarnings:   m.TotalEarnings,
		SubscriberCount: m.SubscriberCount,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}

	if len(m.Tiers) > 0 {
		creator.Tiers = make([]entity.Tier, len(m.Tiers))
		for i, t := range m.Tiers {
			creator.Tiers[i] = entity.Tier{ID: t.ID, Name: t.Name, Price: t.Price, Perks: t.Perks}
		}
	}

	return creator
}

func ToCreatorModel(e *entity.Creator) *model.CreatorModel {
	if e == nil {
		return nil
	}

	creator := &model.CreatorModel{
		ID:              e.ID,
		UserID:          e.UserID,
		Handle:          e.Handle,
		DisplayName:     e.DisplayName,
		Bio:             e.Bio,
		FandomName:      e.FandomName,
		TotalEarnings:   e.TotalEarnings,
		SubscriberCount: e.SubscriberCount,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}

	if len(e.Tiers) > 0 {
		creator.Tiers = make([]model.TierModel, len(e.Tiers))
		for i, t := range e.Tiers {
			creator.Tiers[i] = model.TierModel{ID: t.ID, Name: t.Name, Price: t.Price, Perks: t.Perks}
		}
	}

	return creator
}

func ToPostEntity(m *model.PostModel) *entity.Post {
	if m == nil {
		return nil
	}

	return &entity.Post{
		ID:         m.ID,
		CreatorID:  m.CreatorID,
		Title:      m.Title,
		Content:    m.Content,
		MediaURL:   m.MediaURL,
		MediaType:  entity.MediaType(m.MediaType),
		Visibility: entity.Visibility(m.Visibility),
		Price:      m.Price,
		Likes:      m.Likes,
		Published:  m.Published,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func ToPostModel(e *entity.Post) *model.PostModel {
	if e == nil {
		return nil
	}

	return &model.PostModel{
		ID:         e.ID,
		CreatorID:  e.CreatorID,
		Title:      e.Title,
		Content:    e.Content,
		MediaURL:   e.MediaURL,
		MediaType:  string(e.MediaType),
		Visibility: string(e.Visibility),
		Price:      e.Price,
		Likes:      e.Likes,
		Published:  e.Published,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

func ToLikeEntity(m *model.LikeModel) *entity.Like {
	if m == nil {
		return nil
	}

	return &entity.Like{
		ID:        m.ID,
		PostID:    m.PostID,
		UserID:    m.UserID,
		CreatedAt: m.CreatedAt,
	}
}

func ToSubscriptionEntity(m *model.SubscriptionModel) *entity.Subscription {
	if m == nil {
		return nil
	}

	return &entity.Subscription{
		ID:          m.ID,
		SupporterID: m.SupporterID,
		CreatorID:   m.CreatorID,
		TierID:      m.TierID,
		Amount:      m.Amount,
		StartDate:   m.StartDate,
		EndDate:     m.EndDate,
		Active:      m.Active,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func ToSubscriptionModel(e *entity.Subscription) *model.SubscriptionModel {
	if e == nil {
		return nil
	}

	return &model.SubscriptionModel{
		ID:          e.ID,
		SupporterID: e.SupporterID,
		CreatorID:   e.CreatorID,
		TierID:      e.TierID,
		Amount:      e.Amount,
		StartDate:   e.StartDate,
		EndDate:     e.EndDate,
		Active:      e.Active,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func ToTipEntity(m *model.TipModel) *entity.Tip {
	if m == nil {
		return nil
	}

	return &entity.Tip{
		ID:          m.ID,
		SupporterID: m.SupporterID,
		CreatorID:   m.CreatorID,
		PostID:      m.PostID,
		Amount:      m.Amount,
		Message:     m.Message,
		CreatedAt:   m.CreatedAt,
	}
}

func ToPostUnlockEntity(m *model.PostUnlockModel) *entity.PostUnlock {
	if m == nil {
		return nil
	}

	return &entity.PostUnlock{
		ID:        m.ID,
		PostID:    m.PostID,
		UserID:    m.UserID,
		TipID:     m.TipID,
		CreatedAt: m.CreatedAt,
	}
}

func ToCommentEntity(m *model.CommentModel) *entity.Comment {
	if m == nil {
		return nil
	}

	return &entity.Comment{
		ID:        m.ID,
		PostID:    m.PostID,
		UserID:    m.UserID,
		Content:   m.Content,
		IsHidden:  m.IsHidden,
		Upvotes:   m.Upvotes,
		Downvotes: m.Downvotes,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func ToCommentModel(e *entity.Comment) *model.CommentModel {
	if e == nil {
		return nil
	}

	return &model.CommentModel{
		ID:        e.ID,
		PostID:    e.PostID,
		UserID:    e.UserID,
		Content:   e.Content,
		IsHidden:  e.IsHidden,
		Upvotes:   e.Upvotes,
		Downvotes: e.Downvotes,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func ToCommentVoteEntity(m *model.CommentVoteModel) *entity.CommentVote {
	if m == nil {
		return nil
	}

	return &entity.CommentVote{
		ID:        m.ID,
		CommentID: m.CommentID,
		UserID:    m.UserID,
		VoteType:  entity.VoteType(m.VoteType),
		CreatedAt: m.CreatedAt,
	}
}

func ToConversationEntity(m *model.ConversationModel) *entity.Conversation {
	if m == nil {
		return nil
	}

	return &entity.Conversation{
		ID:            m.ID,
		ParticipantA:  m.ParticipantA,
		ParticipantB:  m.ParticipantB,
		LastMessageAt: m.LastMessageAt,
		CreatedAt:     m.CreatedAt,
	}
}

func ToMessageEntity(m *model.MessageModel) *entity.Message {
	if m == nil {
		return nil
	}

	return &entity.Message{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Content:        m.Content,
		Read:           m.Read,
		CreatedAt:      m.CreatedAt,
	}
}
