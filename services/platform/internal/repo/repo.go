// Package repo defines the entity store contract the platform core depends
// on. Implementations live in repo/persistent (gorm) and repo/memory.
package repo

import (
	"context"
	"errors"
	"time"

	"fanvault/services/platform/internal/entity"
)

var (
	// ErrNotFound is returned by point lookups that match no row.
	ErrNotFound = errors.New("repo: not found")
	// ErrConflict is returned when a write violates a unique constraint.
	ErrConflict = errors.New("repo: conflict")
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *entity.User) error
	GetUser(ctx context.Context, id string) (*entity.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	GetUserByWallet(ctx context.Context, address string) (*entity.User, error)
	UpdateUser(ctx context.Context, user *entity.User) error
}

type CreatorRepository interface {
	CreateCreator(ctx context.Context, creator *entity.Creator) error
	GetCreator(ctx context.Context, id string) (*entity.Creator, error)
	GetCreatorByUserID(ctx context.Context, userID string) (*entity.Creator, error)
	GetCreatorByHandle(ctx context.Context, handle string) (*entity.Creator, error)
	ListCreators(ctx context.Context, limit, offset int) ([]*entity.Creator, error)
	UpdateCreator(ctx context.Context, creator *entity.Creator) error
	// LockCreator reads the creator row and holds it for the rest of the
	// enclosing transaction.
	LockCreator(ctx context.Context, id string) (*entity.Creator, error)
}

type PostRepository interface {
	CreatePost(ctx context.Context, post *entity.Post) error
	GetPost(ctx context.Context, id string) (*entity.Post, error)
	ListPosts(ctx context.Context) ([]*entity.Post, error)
	ListPostsByCreator(ctx context.Context, creatorID string) ([]*entity.Post, error)
	UpdatePost(ctx context.Context, post *entity.Post) error
	// DeletePost removes the post with its likes, comments and their votes.
	DeletePost(ctx context.Context, id string) error
	LockPost(ctx context.Context, id string) (*entity.Post, error)
}

type LikeRepository interface {
	GetLike(ctx context.Context, postID, userID string) (*entity.Like, error)
	CreateLike(ctx context.Context, like *entity.Like) error
	DeleteLike(ctx context.Context, id string) error
}

type SubscriptionRepository interface {
	CreateSubscription(ctx context.Context, sub *entity.Subscription) error
	GetSubscription(ctx context.Context, id string) (*entity.Subscription, error)
	UpdateSubscription(ctx context.Context, sub *entity.Subscription) error
	ListSubscriptionsBySupporter(ctx context.Context, supporterID string) ([]*entity.Subscription, error)
	ListSubscriptionsByCreator(ctx context.Context, creatorID string) ([]*entity.Subscription, error)
	// DeactivateSubscription sets active=false and reports whether the row
	// changed. Deactivating an inactive row is a no-op.
	DeactivateSubscription(ctx context.Context, id string, at time.Time) (bool, error)
}

type TipRepository interface {
	CreateTip(ctx context.Context, tip *entity.Tip) error
	ListTipsByCreator(ctx context.Context, creatorID string) ([]*entity.Tip, error)
}

type PostUnlockRepository interface {
	CreatePostUnlock(ctx context.Context, unlock *entity.PostUnlock) error
	GetPostUnlock(ctx context.Context, postID, userID string) (*entity.PostUnlock, error)
	ListPostUnlocksByUser(ctx context.Context, userID string) ([]*entity.PostUnlock, error)
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *entity.Comment) error
	GetComment(ctx context.Context, id string) (*entity.Comment, error)
	ListCommentsByPost(ctx context.Context, postID string) ([]*entity.Comment, error)
	UpdateComment(ctx context.Context, comment *entity.Comment) error
	DeleteComment(ctx context.Context, id string) error
	LockComment(ctx context.Context, id string) (*entity.Comment, error)
}

type CommentVoteRepository interface {
	GetCommentVote(ctx context.Context, commentID, userID string) (*entity.CommentVote, error)
	CreateCommentVote(ctx context.Context, vote *entity.CommentVote) error
	DeleteCommentVote(ctx context.Context, id string) error
	ListCommentVotesByComment(ctx context.Context, commentID string) ([]*entity.CommentVote, error)
}

type ConversationRepository interface {
	CreateConversation(ctx context.Context, conv *entity.Conversation) error
	GetConversation(ctx context.Context, id string) (*entity.Conversation, error)
	GetConversationBetween(ctx context.Context, userA, userB string) (*entity.Conversation, error)
	ListConversationsByUser(ctx context.Context, userID string) ([]*entity.Conversation, error)
	UpdateConversation(ctx context.Context, conv *entity.Conversation) error
	CreateMessage(ctx context.Context, msg *entity.Message) error
	ListMessages(ctx context.Context, conversationID string, limit int) ([]*entity.Message, error)
	MarkMessagesRead(ctx context.Context, conversationID, readerID string) error
}

type WalletNonceRepository interface {
	UpsertWalletNonce(ctx context.Context, nonce *entity.WalletNonce) error
	GetWalletNonce(ctx context.Context, address string) (*entity.WalletNonce, error)
	DeleteWalletNonce(ctx context.Context, address string) error
}

// Store is the full entity store. WithTx runs fn atomically: if fn returns
// an error, none of its writes are visible afterwards. Calls to WithTx on
// the tx Store passed to fn join the outer transaction.
type Store interface {
	UserRepository
	CreatorRepository
	PostRepository
	LikeRepository
	SubscriptionRepository
	TipRepository
	PostUnlockRepository
	CommentRepository
	CommentVoteRepository
	ConversationRepository
	WalletNonceRepository

	WithTx(ctx context.Context, fn func(tx Store) error) error
}

// OrderedPair returns the two participant ids in canonical order so a
// conversation between two users has exactly one key.
func OrderedPair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}
