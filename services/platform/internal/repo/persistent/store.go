package persistent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fanvault/services/platform/internal/entity"
	"fanvault/services/platform/internal/model"
	"fanvault/services/platform/internal/repo"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct {
	db   *gorm.DB
	inTx bool
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

var _ repo.Store = (*Store)(nil)

// AutoMigrate creates every table the store uses. The partial unique index
// on active subscriptions has no gorm tag form, so it is created by hand.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.UserModel{},
		&model.WalletNonceModel{},
		&model.CreatorModel{},
		&model.PostModel{},
		&model.LikeModel{},
		&model.SubscriptionModel{},
		&model.TipModel{},
		&model.PostUnlockModel{},
		&model.CommentModel{},
		&model.CommentVoteModel{},
		&model.ConversationModel{},
		&model.MessageModel{},
	)
	if err != nil {
		return err
	}

	return db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_subscriptions_active_pair ON subscriptions (supporter_id, creator_id) WHERE active",
	).Error
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func (s *Store) WithTx(ctx context.Context, fn func(tx repo.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, inTx: true})
	})
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repo.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return fmt.Errorf("%w: %v", repo.ErrConflict, err)
	}
	return err
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "UNIQUE constraint failed")
}

// updateAll writes every column of m except the primary key and created_at.
func (s *Store) updateAll(ctx context.Context, m interface{}) error {
	result := s.conn(ctx).Model(m).Select("*").Omit("id", "created_at").Updates(m)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Store) lock(ctx context.Context) *gorm.DB {
	return s.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
}

// Users

func (s *Store) CreateUser(ctx context.Context, user *entity.User) error {
	m := ToUserModel(user)
	if err := s.conn(ctx).Create(m).Error; err != nil {
		return translate(err)
	}
	user.ID, user.CreatedAt, user.UpdatedAt = m.ID, m.CreatedAt, m.UpdatedAt
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*entity.User, error) {
	var m model.UserModel
	if err := s.conn(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return ToUserEntity(&m), nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	var m model.UserModel
	if err := s.conn(ctx).Where("LOWER(email) = LOWER(?)", email).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return ToUserEntity(&m), nil
}

func (s *Store) GetUserByWallet(ctx context.Context, address string) (*entity.User, error) {
	var m model.UserModel
	if err := s.conn(ctx).Where("LOWER(wallet_address) = LOWER(?)", address).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return ToUserEntity(&m), nil
}

func (s *Store) UpdateUser(ctx context.Context, user *entity.User) error {
	m := ToUserModel(user)
	if err := s.updateAll(ctx, m); err != nil {
		return err
	}
	user.UpdatedAt = m.UpdatedAt
	return nil
}

// Creators

func (s *Store) CreateCreator(ctx context.Context, creator *entity.Creator) error {
	m := ToCreatorModel(creator)
	if err := s.conn(ctx).Create(m).Error; err != nil {
		return translate(err)
	}
	creator.ID, creator.CreatedAt, creator.UpdatedAt = m.ID, m.CreatedAt, m.UpdatedAt
	return nil
}

func (s *Store) GetCreator(ctx context.Context, id string) (*entity.Creator, error) {
	var m model.CreatorModel
	if err := s.conn(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return ToCreatorEntity(&m), nil
}

func (s *Store) GetCreatorByUserID(ctx context.Context, userID string) (*entity.Creator, error) {
	var m model.CreatorModel
	if err := s.conn(ctx).Where("user_id = ?", userID).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return ToCreatorEntity(&m), nil
}

func (s *Store) GetCreatorByHandle(ctx context.Context, handle string) (*entity.Creator, error) {
	var m model.CreatorModel
	if err := s.conn(ctx).Where("LOWER(handle) = LOWER(?)", handle).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return ToCreatorEntity(&m), nil
}

func (s *Store) ListCreators(ctx context.Context, limit, offset int) ([]*entity.Creator, error) {
	var models []model.CreatorModel
	query := s.conn(ctx).Order("created_at DESC").Offset(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	creators := make([]*entity.Creator, len(models))
	for i := range models {
		creators[i] = ToCreatorEntity(&models[i])
	}
	return creators, nil
}

func (s *Store) UpdateCreator(ctx context.Context, creator *entity.Creator) error {
	m := ToCreatorModel(creator)
	if err := s.updateAll(ctx, m); err != nil {
		return err
	}
	creator.UpdatedAt = m.UpdatedAt
	return nil
}

func (s *Store) LockCreator(ctx context.Context, id string) (*entity.Creator, error) {
	var m model.CreatorModel
	if err := s.lock(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return ToCreatorEntity(&m), nil
}

// Posts

func (s *Store) CreatePost(ctx context.Context, post *entity.Post) error {
	m := ToPostModel(post)
	if err := s.conn(ctx).Create(m).Error; err != nil {
		return translate(err)
	}
	post.ID, post.CreatedAt, post.UpdatedAt = m.ID, m.CreatedAt, m.UpdatedAt
	return nil
}

func (s *Store) GetPost(ctx context.Context, id string) (*entity.Post, error) {
	var m model.PostModel
	if err := s.conn(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return ToPostEntity(&m), nil
}

func (s *Store) ListPosts(ctx context.Context) ([]*entity.Post, error) {
	return s.findPosts(s.conn(ctx))
}

func (s *Store) ListPostsByCreator(ctx context.Context, creatorID string) ([]*entity.Post, error) {
	return s.findPosts(s.conn(ctx).Where("creator_id = ?", creatorID))
}

func (s *Store) findPosts(query *gorm.DB) ([]*entity.Post, error) {
	var models []model.PostModel
	if err := query.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}

	posts := make([]*entity.Post, len(models))
	for i := range models {
		posts[i] = ToPostEntity(&models[i])
	}
	return posts, nil
}

func (s *Store) UpdatePost(ctx context.Context, post *entity.Post) error {
	m := ToPostModel(post)
	if err := s.updateAll(ctx, m); err != nil {
		return err
	}
	post.UpdatedAt = m.UpdatedAt
	return nil
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	return s.WithTx(ctx, func(tx repo.Store) error {
		db := tx.(*Store).conn(ctx)

		commentIDs := db.Model(&model.CommentModel{}).Select("id").Where("post_id = ?", id)
		if err := db.Where("comment_id IN (?)", commentIDs).Delete(&model.CommentVoteModel{}).Error; err != nil {
			return err
		}
		if err := db.Where("post_id = ?", id).Delete(&model.CommentModel{}).Error; err != nil {
			return err
		}
		if err := db.Where("post_id = ?", id).Delete(&model.LikeModel{}).Error; err != nil {
			return err
		}

		result := db.Where("id = ?", id).Delete(&model.PostModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return nil
	})
}

func (s *Store) LockPost(ctx context.Context, id string) (*entity.Post, error) {
	var m model.PostModel
	if err := s.lock(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return ToPostEntity(&m), nil
}

// Likes

func (s *Store) GetLike(ctx context.Context, postID, userID string) (*entity.Like, error) {
	var m model.LikeModel
	if err := s.conn(ctx).Where("post_id = ? AND user_id = ?", postID, userID).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return ToLikeEntity(&m), nil
}

func (s *Store) CreateLike(ctx context.Context, like *entity.Like) error {
	m := &model.LikeModel{ID: like.ID, PostID: like.PostID, UserID: like.UserID}
	if err := s.conn(ctx).Create(m).Error; err != nil {
		return translate(err)
	}
	like.ID, like.CreatedAt = m.ID, m.CreatedAt
	return nil
}

func (s *Store) DeleteLike(ctx context.Context, id string) error {
	result := s.conn(ctx).Where("id = ?", id).Delete(&model.LikeModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// Subscriptions

func (s *Store) CreateSubscription(ctx context.Context, sub *entity.Subscription) error {
	m := ToSubscriptionModel(sub)
	if err := s.conn(ctx).Create(m).Error; err != nil {
		return translate(err)
	}
	sub.ID, sub.CreatedAt, sub.UpdatedAt = m.ID, m.CreatedAt, m.UpdatedAt
	return nil
}

func (s *Store) GetSubscription(ctx context.Context, id string) (*entity.Subscription, error) {
	var m model.SubscriptionModel
	if err := s.conn(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return ToSubscriptionEntity(&m), nil
}

func (s *Store) UpdateSubscription(ctx context.Context, sub *entity.Subscription) error {
	m := ToSubscriptionModel(sub)
	if err := s.updateAll(ctx, m); err != nil {
		return err
	}
	sub.UpdatedAt = m.UpdatedAt
	return nil
}

func (s *Store) ListSubscriptionsBySupporter(ctx context.Context, supporterID string) ([]*entity.Subscription, error) {
	return s.findSubscriptions(s.conn(ctx).Where("supporter_id = ?", supporterID))
}

func (s *Store) ListSubscriptionsByCreator(ctx context.Context, creatorID string) ([]*entity.Subscription, error) {
	return s.findSubscriptions(s.conn(ctx).Where("creator_id = ?", creatorID))
}

func (s *Store) findSubscriptions(query *gorm.DB) ([]*entity.Subscription, error) {
	var models []model.SubscriptionModel
	if err := query.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}

	subs := make([]*entity.Subscription, len(models))
	for i := range models {
		subs[i] = ToSubscriptionEntity(&models[i])
	}
	return subs, nil
}

func (s *Store) DeactivateSubscription(ctx context.Context, id string, at time.Time) (bool, error) {
	result := s.conn(ctx).Model(&model.SubscriptionModel{}).
		Where("id = ? AND active = ?", id, true).
		Updates(map[string]interface{}{"active": false, "updated_at": at})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	if _, err := s.GetSubscription(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

// Tips

func (s *Store) CreateTip(ctx context.Context, tip *entity.Tip) error {
	m := &model.TipModel{
		ID:          tip.ID,
		SupporterID: tip.SupporterID,
		CreatorID:   tip.CreatorID,
		PostID:      tip.PostID,
		Amount:      tip.Amount,
		Message:     tip.Message,
	}
	if err := s.conn(ctx).Create(m).Error; err != nil {
		return translate(err)
	}
	tip.ID, tip.CreatedAt = m.ID, m.CreatedAt
	return nil
}

func (s *Store) ListTipsByCreator(ctx context.Context, creatorID string) ([]*entity.Tip, error) {
	var models []model.TipModel
	if err := s.conn(ctx).Where("creator_id = ?", creatorID).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}

	tips := make([]*entity.Tip, len(models))
	for i := range models {
		tips[i] = ToTipEntity(&models[i])
	}
	return tips, nil
}

// Post unlocks

func (s *Store) CreatePostUnlock(ctx context.Context, unlock *entity.PostUnlock) error {
	m := &model.PostUnlockModel{ID: unlock.ID, PostID: unlock.PostID, UserID: unlock.UserID, TipID: unlock.TipID}
	if err := s.conn(ctx).Create(m).Error; err != nil {
		return translate(err)
	}
	unlock.ID, unlock.CreatedAt = m.ID, m.CreatedAt
	return nil
}

func (s *Store) GetPostUnlock(ctx context.Context, postID, userID string) (*entity.PostUnlock, error) {
	var m model.PostUnlockModel
	if err := s.conn(ctx).Where("post_id = ? AND user_id = ?", postID, userID).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return ToPostUnlockEntity(&m), nil
}

func (s *Store) ListPostUnlocksByUser(ctx context.Context, userID string) ([]*entity.PostUnlock, error) {
	var models []model.PostUnlockModel
	if err := s.conn(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}

	unlocks := make([]*entity.PostUnlock, len(models))
	for i := range models {
		unlocks[i] = ToPostUnlockEntity(&models[i])
	}
	return unlocks, nil
}

// Comments

func (s *Store) CreateComment(ctx context.Context, comment *entity.Comment) error {
	if _, err := s.GetPost(ctx, comment.PostID); err != nil {
		return err
	}

	m := ToCommentModel(comment)
	if err := s.conn(ctx).Create(m).Error; err != nil {
		return translate(err)
	}
	comment.ID, comment.CreatedAt, comment.UpdatedAt = m.ID, m.CreatedAt, m.UpdatedAt
	return nil
}

func (s *Store) GetComment(ctx context.Context, id string) (*entity.Comment, error) {
	var m model.CommentModel
	if err := s.conn(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return ToCommentEntity(&m), nil
}

func (s *Store) ListCommentsByPost(ctx context.Context, postID string) ([]*entity.Comment, error) {
	var models []model.CommentModel
	if err := s.conn(ctx).Where("post_id = ?", postID).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	comments := make([]*entity.Comment, len(models))
	for i := range models {
		comments[i] = ToCommentEntity(&models[i])
	}
	return comments, nil
}

func (s *Store) UpdateComment(ctx context.Context, comment *entity.Comment) error {
	m := ToCommentModel(comment)
	if err := s.updateAll(ctx, m); err != nil {
		return err
	}
	comment.UpdatedAt = m.UpdatedAt
	return nil
}

func (s *Store) DeleteComment(ctx context.Context, id string) error {
	return s.WithTx(ctx, func(tx repo.Store) error {
		db := tx.(*Store).conn(ctx)

		if err := db.Where("comment_id = ?", id).Delete(&model.CommentVoteModel{}).Error; err != nil {
			return err
		}
		result := db.Where("id = ?", id).Delete(&model.CommentModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return nil
	})
}

func (s *Store) LockComment(ctx context.Context, id string) (*entity.Comment, error) {
	var m model.CommentModel
	if err := s.lock(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return ToCommentEntity(&m), nil
}

// Comment votes

func (s *Store) GetCommentVote(ctx context.Context, commentID, userID string) (*entity.CommentVote, error) {
	var m model.CommentVoteModel
	if err := s.conn(ctx).Where("comment_id = ? AND user_id = ?", commentID, userID).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return ToCommentVoteEntity(&m), nil
}

func (s *Store) CreateCommentVote(ctx context.Context, vote *entity.CommentVote) error {
	m := &model.CommentVoteModel{ID: vote.ID, CommentID: vote.CommentID, UserID: vote.UserID, VoteType: string(vote.VoteType)}
	if err := s.conn(ctx).Create(m).Error; err != nil {
		return translate(err)
	}
	vote.ID, vote.CreatedAt = m.ID, m.CreatedAt
	return nil
}

func (s *Store) DeleteCommentVote(ctx context.Context, id string) error {
	result := s.conn(ctx).Where("id = ?", id).Delete(&model.CommentVoteModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Store) ListCommentVotesByComment(ctx context.Context, commentID string) ([]*entity.CommentVote, error) {
	var models []model.CommentVoteModel
	if err := s.conn(ctx).Where("comment_id = ?", commentID).Find(&models).Error; err != nil {
		return nil, err
	}

	votes := make([]*entity.CommentVote, len(models))
	for i := range models {
		votes[i] = ToCommentVoteEntity(&models[i])
	}
	return votes, nil
}

// Conversations

func (s *Store) CreateConversation(ctx context.Context, conv *entity.Conversation) error {
	a, b := repo.OrderedPair(conv.ParticipantA, conv.ParticipantB)
	m := &model.ConversationModel{ID: conv.ID, ParticipantA: a, ParticipantB: b, LastMessageAt: conv.LastMessageAt}
	if m.LastMessageAt.IsZero() {
		m.LastMessageAt = time.Now().UTC()
	}
	if err := s.conn(ctx).Create(m).Error; err != nil {
		return translate(err)
	}
	*conv = *ToConversationEntity(m)
	return nil
}

func (s *Store) GetConversation(ctx context.Context, id string) (*entity.Conversation, error) {
	var m model.ConversationModel
	if err := s.conn(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return ToConversationEntity(&m), nil
}

func (s *Store) GetConversationBetween(ctx context.Context, userA, userB string) (*entity.Conversation, error) {
	a, b := repo.OrderedPair(userA, userB)
	var m model.ConversationModel
	if err := s.conn(ctx).Where("participant_a = ? AND participant_b = ?", a, b).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return ToConversationEntity(&m), nil
}

func (s *Store) ListConversationsByUser(ctx context.Context, userID string) ([]*entity.Conversation, error) {
	var models []model.ConversationModel
	err := s.conn(ctx).
		Where("participant_a = ? OR participant_b = ?", userID, userID).
		Order("last_message_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	convs := make([]*entity.Conversation, len(models))
	for i := range models {
		convs[i] = ToConversationEntity(&models[i])
	}
	return convs, nil
}

func (s *Store) UpdateConversation(ctx context.Context, conv *entity.Conversation) error {
	result := s.conn(ctx).Model(&model.ConversationModel{}).
		Where("id = ?", conv.ID).
		Update("last_message_at", conv.LastMessageAt)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Store) CreateMessage(ctx context.Context, msg *entity.Message) error {
	if _, err := s.GetConversation(ctx, msg.ConversationID); err != nil {
		return err
	}

	m := &model.MessageModel{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		SenderID:       msg.SenderID,
		Content:        msg.Content,
		Read:           msg.Read,
		CreatedAt:      msg.CreatedAt,
	}
	if err := s.conn(ctx).Create(m).Error; err != nil {
		return translate(err)
	}
	msg.ID, msg.CreatedAt = m.ID, m.CreatedAt
	return nil
}

// ListMessages returns the latest limit messages in chronological order.
func (s *Store) ListMessages(ctx context.Context, conversationID string, limit int) ([]*entity.Message, error) {
	var models []model.MessageModel
	query := s.conn(ctx).Where("conversation_id = ?", conversationID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	msgs := make([]*entity.Message, len(models))
	for i := range models {
		msgs[len(models)-1-i] = ToMessageEntity(&models[i])
	}
	return msgs, nil
}

func (s *Store) MarkMessagesRead(ctx context.Context, conversationID, readerID string) error {
	return s.conn(ctx).Model(&model.MessageModel{}).
		Where("conversation_id = ? AND sender_id <> ? AND read = ?", conversationID, readerID, false).
		Update("read", true).Error
}

// Wallet nonces

func (s *Store) UpsertWalletNonce(ctx context.Context, nonce *entity.WalletNonce) error {
	m := &model.WalletNonceModel{
		ID:        nonce.ID,
		Address:   strings.ToLower(nonce.Address),
		Nonce:     nonce.Nonce,
		ExpiresAt: nonce.ExpiresAt,
	}
	err := s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "address"}},
		DoUpdates: clause.AssignmentColumns([]string{"nonce", "expires_at", "created_at"}),
	}).Create(m).Error
	if err != nil {
		return translate(err)
	}
	nonce.CreatedAt = m.CreatedAt
	return nil
}

func (s *Store) GetWalletNonce(ctx context.Context, address string) (*entity.WalletNonce, error) {
	var m model.WalletNonceModel
	if err := s.conn(ctx).Where("address = ?", strings.ToLower(address)).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return ToWalletNonceEntity(&m), nil
}

func (s *Store) DeleteWalletNonce(ctx context.Context, address string) error {
	return s.conn(ctx).Where("address = ?", strings.ToLower(address)).Delete(&model.WalletNonceModel{}).Error
}
