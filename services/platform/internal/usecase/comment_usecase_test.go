package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"fanvault/pkg/apperror"
	"fanvault/services/platform/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTallyVotes(t *testing.T) {
	up, down := TallyVotes([]*entity.CommentVote{
		{VoteType: entity.VoteUp},
		{VoteType: entity.VoteUp},
		{VoteType: entity.VoteDown},
		{VoteType: "sideways"},
	})
	assert.Equal(t, 2, up)
	assert.Equal(t, 1, down)

	up, down = TallyVotes(nil)
	assert.Zero(t, up)
	assert.Zero(t, down)
}

func TestCreateComment_RequiresEntitlement(t *testing.T) {
	e := newEnv(t)
	uc := e.comments()
	ctx := context.Background()

	public := e.post(t, entity.VisibilityPublic, 0)
	comment, err := uc.CreateComment(ctx, e.supporter.ID, public.ID, "  nice  ")
	require.NoError(t, err)
	assert.Equal(t, "nice", comment.Content)

	members := e.post(t, entity.VisibilityMembers, 0)
	_, err = uc.CreateComment(ctx, e.supporter.ID, members.ID, "let me in")
	assert.True(t, apperror.Is(err, apperror.SubscriptionRequired))

	ppv := e.post(t, entity.VisibilityPPV, 200)
	_, err = uc.CreateComment(ctx, e.supporter.ID, ppv.ID, "let me in")
	assert.True(t, apperror.Is(err, apperror.PaymentRequired))

	_, err = uc.CreateComment(ctx, e.supporter.ID, public.ID, "   ")
	assert.True(t, apperror.Is(err, apperror.ValidationError))

	_, err = uc.CreateComment(ctx, "", public.ID, "hi")
	assert.True(t, apperror.Is(err, apperror.AuthenticationRequired))

	_, err = uc.CreateComment(ctx, e.supporter.ID, "missing", "hi")
	assert.True(t, apperror.Is(err, apperror.NotFound))
}

func TestVoteComment_ToggleAndReplace(t *testing.T) {
	e := newEnv(t)
	uc := e.comments()
	ctx := context.Background()

	post := e.post(t, entity.VisibilityPublic, 0)
	comment, err := uc.CreateComment(ctx, e.supporter.ID, post.ID, "first")
	require.NoError(t, err)

	res, err := uc.VoteComment(ctx, e.supporter.ID, comment.ID, entity.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Comment.Upvotes)
	assert.Equal(t, 0, res.Comment.Downvotes)
	require.NotNil(t, res.UserVote)
	assert.Equal(t, entity.VoteUp, *res.UserVote)

	res, err = uc.VoteComment(ctx, e.supporter.ID, comment.ID, entity.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Comment.Upvotes)
	assert.Nil(t, res.UserVote)

	_, err = uc.VoteComment(ctx, e.supporter.ID, comment.ID, entity.VoteUp)
	require.NoError(t, err)
	res, err = uc.VoteComment(ctx, e.supporter.ID, comment.ID, entity.VoteDown)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Comment.Upvotes)
	assert.Equal(t, 1, res.Comment.Downvotes)
	require.NotNil(t, res.UserVote)
	assert.Equal(t, entity.VoteDown, *res.UserVote)

	votes, err := e.store.ListCommentVotesByComment(ctx, comment.ID)
	require.NoError(t, err)
	assert.Len(t, votes, 1)

	_, err = uc.VoteComment(ctx, e.supporter.ID, comment.ID, "meh")
	assert.True(t, apperror.Is(err, apperror.ValidationError))

	_, err = uc.VoteComment(ctx, e.supporter.ID, "missing", entity.VoteUp)
	assert.True(t, apperror.Is(err, apperror.NotFound))
}

func TestVoteComment_ConcurrentVotersTallyExactly(t *testing.T) {
	e := newEnv(t)
	uc := e.comments()
	ctx := context.Background()

	post := e.post(t, entity.VisibilityPublic, 0)
	comment, err := uc.CreateComment(ctx, e.supporter.ID, post.ID, "vote on me")
	require.NoError(t, err)

	voters := make([]*entity.User, 30)
	for i := range voters {
		voters[i] = newUser(t, e.store, fmt.Sprintf("voter%d@example.com", i))
	}

	var wg sync.WaitGroup
	for i, voter := range voters {
		voteType := entity.VoteUp
		if i%3 == 0 {
			voteType = entity.VoteDown
		}
		wg.Add(1)
		go func(userID string, voteType entity.VoteType) {
			defer wg.Done()
			_, err := uc.VoteComment(ctx, userID, comment.ID, voteType)
			assert.NoError(t, err)
		}(voter.ID, voteType)
	}
	wg.Wait()

	stored, err := e.store.GetComment(ctx, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, stored.Upvotes)
	assert.Equal(t, 10, stored.Downvotes)
}

func TestHideComment(t *testing.T) {
	e := newEnv(t)
	uc := e.comments()
	ctx := context.Background()

	post := e.post(t, entity.VisibilityPublic, 0)
	comment, err := uc.CreateComment(ctx, e.supporter.ID, post.ID, "rude")
	require.NoError(t, err)
	_, err = uc.CreateComment(ctx, e.supporter.ID, post.ID, "polite")
	require.NoError(t, err)

	_, err = uc.HideComment(ctx, e.supporter.ID, comment.ID, true)
	assert.True(t, apperror.Is(err, apperror.AccessDenied))

	hidden, err := uc.HideComment(ctx, e.creator.UserID, comment.ID, true)
	require.NoError(t, err)
	assert.True(t, hidden.IsHidden)

	visible, err := uc.ListComments(ctx, e.supporter.ID, post.ID)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "polite", visible[0].Content)

	anonymous, err := uc.ListComments(ctx, "", post.ID)
	require.NoError(t, err)
	assert.Len(t, anonymous, 1)

	all, err := uc.ListComments(ctx, e.creator.UserID, post.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDeleteComment_Permissions(t *testing.T) {
	e := newEnv(t)
	uc := e.comments()
	ctx := context.Background()

	post := e.post(t, entity.VisibilityPublic, 0)
	mine, err := uc.CreateComment(ctx, e.supporter.ID, post.ID, "mine")
	require.NoError(t, err)
	other, err := uc.CreateComment(ctx, e.supporter.ID, post.ID, "also mine")
	require.NoError(t, err)

	stranger := newUser(t, e.store, "stranger@example.com")
	err = uc.DeleteComment(ctx, stranger.ID, mine.ID)
	assert.True(t, apperror.Is(err, apperror.AccessDenied))

	require.NoError(t, uc.DeleteComment(ctx, e.supporter.ID, mine.ID))
	require.NoError(t, uc.DeleteComment(ctx, e.creator.UserID, other.ID))

	err = uc.DeleteComment(ctx, e.supporter.ID, mine.ID)
	assert.True(t, apperror.Is(err, apperror.NotFound))

	left, err := uc.ListComments(ctx, e.creator.UserID, post.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
}
