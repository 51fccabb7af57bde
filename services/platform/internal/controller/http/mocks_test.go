package http

import (
	"context"
	"io"

	"fanvault/pkg/logger"
	"fanvault/services/platform/internal/entity"
	"fanvault/services/platform/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

// MockContentUseCase is a mock implementation of ContentUseCase
type MockContentUseCase struct {
	mock.Mock
}

func (m *MockContentUseCase) ListPosts(ctx context.Context, viewerID string) ([]entity.PostView, error) {
	args := m.Called(ctx, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.PostView), args.Error(1)
}

func (m *MockContentUseCase) ListCreatorPosts(ctx context.Context, creatorID, viewerID string) ([]entity.PostView, error) {
	args := m.Called(ctx, creatorID, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.PostView), args.Error(1)
}

func (m *MockContentUseCase) GetPost(ctx context.Context, postID, viewerID string) (*entity.PostView, error) {
	args := m.Called(ctx, postID, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PostView), args.Error(1)
}

func (m *MockContentUseCase) CreatePost(ctx context.Context, userID string, input usecase.PostInput, media *usecase.MediaUpload) (*entity.Post, error) {
	args := m.Called(ctx, userID, input, media)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockContentUseCase) UpdatePost(ctx context.Context, userID, postID string, patch usecase.PostPatch) (*entity.Post, error) {
	args := m.Called(ctx, userID, postID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockContentUseCase) DeletePost(ctx context.Context, userID, postID string) error {
	args := m.Called(ctx, userID, postID)
	return args.Error(0)
}

func (m *MockContentUseCase) LikePost(ctx context.Context, userID, postID string) (*usecase.LikeResult, error) {
	args := m.Called(ctx, userID, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.LikeResult), args.Error(1)
}

var _ usecase.ContentUseCase = (*MockContentUseCase)(nil)

// MockMembershipUseCase is a mock implementation of MembershipUseCase
type MockMembershipUseCase struct {
	mock.Mock
}

func (m *MockMembershipUseCase) CheckSubscriptionStatus(ctx context.Context, viewerID, creatorID string) (*usecase.SubscriptionStatus, error) {
	args := m.Called(ctx, viewerID, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.SubscriptionStatus), args.Error(1)
}

func (m *MockMembershipUseCase) Subscribe(ctx context.Context, supporterID, creatorID, tierID string, amount int64) (*entity.Subscription, error) {
	args := m.Called(ctx, supporterID, creatorID, tierID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Subscription), args.Error(1)
}

func (m *MockMembershipUseCase) RenewSubscription(ctx context.Context, userID, subscriptionID string, days int) (*entity.Subscription, error) {
	args := m.Called(ctx, userID, subscriptionID, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Subscription), args.Error(1)
}

func (m *MockMembershipUseCase) CancelSubscription(ctx context.Context, userID, subscriptionID string) (*entity.Subscription, error) {
	args := m.Called(ctx, userID, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Subscription), args.Error(1)
}

func (m *MockMembershipUseCase) ListSubscriptions(ctx context.Context, userID string) ([]*entity.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Subscription), args.Error(1)
}

func (m *MockMembershipUseCase) Tip(ctx context.Context, supporterID string, input usecase.TipInput) (*entity.Tip, error) {
	args := m.Called(ctx, supporterID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Tip), args.Error(1)
}

func (m *MockMembershipUseCase) UnlockPost(ctx context.Context, viewerID, postID string) (*usecase.UnlockResult, error) {
	args := m.Called(ctx, viewerID, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.UnlockResult), args.Error(1)
}

var _ usecase.MembershipUseCase = (*MockMembershipUseCase)(nil)

// MockCommentUseCase is a mock implementation of CommentUseCase
type MockCommentUseCase struct {
	mock.Mock
}

func (m *MockCommentUseCase) ListComments(ctx context.Context, viewerID, postID string) ([]*entity.Comment, error) {
	args := m.Called(ctx, viewerID, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Comment), args.Error(1)
}

func (m *MockCommentUseCase) CreateComment(ctx context.Context, userID, postID, content string) (*entity.Comment, error) {
	args := m.Called(ctx, userID, postID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Comment), args.Error(1)
}

func (m *MockCommentUseCase) VoteComment(ctx context.Context, userID, commentID string, voteType entity.VoteType) (*usecase.VoteResult, error) {
	args := m.Called(ctx, userID, commentID, voteType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.VoteResult), args.Error(1)
}

func (m *MockCommentUseCase) HideComment(ctx context.Context, userID, commentID string, hidden bool) (*entity.Comment, error) {
	args := m.Called(ctx, userID, commentID, hidden)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Comment), args.Error(1)
}

func (m *MockCommentUseCase) DeleteComment(ctx context.Context, userID, commentID string) error {
	args := m.Called(ctx, userID, commentID)
	return args.Error(0)
}

var _ usecase.CommentUseCase = (*MockCommentUseCase)(nil)

// MockAuthUseCase is a mock implementation of AuthUseCase
type MockAuthUseCase struct {
	mock.Mock
}

func (m *MockAuthUseCase) Register(ctx context.Context, email, password, displayName string) (*usecase.AuthResult, error) {
	args := m.Called(ctx, email, password, displayName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.AuthResult), args.Error(1)
}

func (m *MockAuthUseCase) Login(ctx context.Context, email, password string) (*usecase.AuthResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.AuthResult), args.Error(1)
}

func (m *MockAuthUseCase) GetProfile(ctx context.Context, userID string) (*usecase.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.Profile), args.Error(1)
}

func (m *MockAuthUseCase) IssueWalletNonce(ctx context.Context, userID, address string) (*entity.WalletNonce, string, error) {
	args := m.Called(ctx, userID, address)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*entity.WalletNonce), args.String(1), args.Error(2)
}

func (m *MockAuthUseCase) VerifyWallet(ctx context.Context, userID, address, signature string) (*entity.User, error) {
	args := m.Called(ctx, userID, address, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

var _ usecase.AuthUseCase = (*MockAuthUseCase)(nil)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func testLogger() *logger.Logger {
	return logger.NewWithOptions("error", true, io.Discard)
}

// asUser sets the authenticated caller before running handler.
func asUser(userID string, handler gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != "" {
			c.Set("user_id", userID)
		}
		handler(c)
	}
}
