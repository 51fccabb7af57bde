// Package repotest holds the behaviour every repo.Store implementation must
// share. Each implementation's tests call Run with a fresh-store factory.
package repotest

import (
	"context"
	"errors"
	"testing"
	"time"

	"fanvault/services/platform/internal/entity"
	"fanvault/services/platform/internal/repo"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Run(t *testing.T, newStore func(t *testing.T) repo.Store) {
	t.Run("users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("creators", func(t *testing.T) { testCreators(t, newStore(t)) })
	t.Run("posts", func(t *testing.T) { testPosts(t, newStore(t)) })
	t.Run("delete post cascades", func(t *testing.T) { testDeletePostCascade(t, newStore(t)) })
	t.Run("subscriptions", func(t *testing.T) { testSubscriptions(t, newStore(t)) })
	t.Run("unlocks", func(t *testing.T) { testUnlocks(t, newStore(t)) })
	t.Run("votes", func(t *testing.T) { testVotes(t, newStore(t)) })
	t.Run("conversations", func(t *testing.T) { testConversations(t, newStore(t)) })
	t.Run("wallet nonces", func(t *testing.T) { testWalletNonces(t, newStore(t)) })
	t.Run("transaction rollback", func(t *testing.T) { testRollback(t, newStore(t)) })
}

func strPtr(s string) *string { return &s }

func newID() string { return uuid.New().String() }

func SeedCreator(t *testing.T, s repo.Store, handle string) *entity.Creator {
	t.Helper()
	ctx := context.Background()

	user := &entity.User{Email: handle + "@example.com", PasswordHash: "x", Role: entity.RoleCreator, DisplayName: handle}
	require.NoError(t, s.CreateUser(ctx, user))

	creator := &entity.Creator{
		UserID:      user.ID,
		Handle:      handle,
		DisplayName: handle,
		FandomName:  handle + " fans",
		Tiers:       []entity.Tier{{ID: "basic", Name: "Basic", Price: 500, Perks: []string{"posts"}}},
	}
	require.NoError(t, s.CreateCreator(ctx, creator))
	return creator
}

func testUsers(t *testing.T, s repo.Store) {
	ctx := context.Background()

	user := &entity.User{Email: "fan@example.com", PasswordHash: "hash", Role: entity.RoleSupporter}
	require.NoError(t, s.CreateUser(ctx, user))
	assert.NotEmpty(t, user.ID)

	got, err := s.GetUserByEmail(ctx, "FAN@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	err = s.CreateUser(ctx, &entity.User{Email: "fan@example.com", PasswordHash: "x", Role: entity.RoleSupporter})
	assert.True(t, errors.Is(err, repo.ErrConflict))

	got.WalletAddress = strPtr("0xabc")
	got.WalletVerified = true
	require.NoError(t, s.UpdateUser(ctx, got))

	byWallet, err := s.GetUserByWallet(ctx, "0xABC")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byWallet.ID)
	assert.True(t, byWallet.WalletVerified)

	_, err = s.GetUser(ctx, newID())
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func testCreators(t *testing.T, s repo.Store) {
	ctx := context.Background()

	creator := SeedCreator(t, s, "ava")

	got, err := s.GetCreatorByHandle(ctx, "AVA")
	require.NoError(t, err)
	assert.Equal(t, creator.ID, got.ID)
	require.Len(t, got.Tiers, 1)
	assert.Equal(t, int64(500), got.Tiers[0].Price)
	assert.Equal(t, []string{"posts"}, got.Tiers[0].Perks)

	byUser, err := s.GetCreatorByUserID(ctx, creator.UserID)
	require.NoError(t, err)
	assert.Equal(t, creator.ID, byUser.ID)

	err = s.CreateCreator(ctx, &entity.Creator{UserID: creator.UserID, Handle: "other"})
	assert.ErrorIs(t, err, repo.ErrConflict)

	got.TotalEarnings = 1500
	got.SubscriberCount = 2
	require.NoError(t, s.UpdateCreator(ctx, got))

	locked, err := s.LockCreator(ctx, creator.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), locked.TotalEarnings)
	assert.Equal(t, 2, locked.SubscriberCount)

	SeedCreator(t, s, "bea")
	list, err := s.ListCreators(ctx, 1, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	err = s.UpdateCreator(ctx, &entity.Creator{ID: newID(), Handle: "ghost"})
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func testPosts(t *testing.T, s repo.Store) {
	ctx := context.Background()
	creator := SeedCreator(t, s, "cleo")

	first := &entity.Post{CreatorID: creator.ID, Title: "one", Content: strPtr("hello"), Visibility: entity.VisibilityPublic, Published: true}
	require.NoError(t, s.CreatePost(ctx, first))
	second := &entity.Post{CreatorID: creator.ID, Title: "two", Content: strPtr("paid"), Visibility: entity.VisibilityPPV, Price: 300, Published: false}
	require.NoError(t, s.CreatePost(ctx, second))

	posts, err := s.ListPostsByCreator(ctx, creator.ID)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	got, err := s.GetPost(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.VisibilityPPV, got.Visibility)
	assert.Equal(t, int64(300), got.Price)
	assert.False(t, got.Published)
	require.NotNil(t, got.Content)
	assert.Equal(t, "paid", *got.Content)

	got.Likes = 4
	got.Published = true
	require.NoError(t, s.UpdatePost(ctx, got))

	locked, err := s.LockPost(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, locked.Likes)
	assert.True(t, locked.Published)

	like := &entity.Like{PostID: first.ID, UserID: creator.UserID}
	require.NoError(t, s.CreateLike(ctx, like))
	assert.ErrorIs(t, s.CreateLike(ctx, &entity.Like{PostID: first.ID, UserID: creator.UserID}), repo.ErrConflict)

	found, err := s.GetLike(ctx, first.ID, creator.UserID)
	require.NoError(t, err)
	require.NoError(t, s.DeleteLike(ctx, found.ID))
	_, err = s.GetLike(ctx, first.ID, creator.UserID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func testDeletePostCascade(t *testing.T, s repo.Store) {
	ctx := context.Background()
	creator := SeedCreator(t, s, "dana")

	post := &entity.Post{CreatorID: creator.ID, Title: "gone", Content: strPtr("soon"), Visibility: entity.VisibilityPublic, Published: true}
	require.NoError(t, s.CreatePost(ctx, post))
	require.NoError(t, s.CreateLike(ctx, &entity.Like{PostID: post.ID, UserID: creator.UserID}))

	comment := &entity.Comment{PostID: post.ID, UserID: creator.UserID, Content: "first"}
	require.NoError(t, s.CreateComment(ctx, comment))
	require.NoError(t, s.CreateCommentVote(ctx, &entity.CommentVote{CommentID: comment.ID, UserID: creator.UserID, VoteType: entity.VoteUp}))

	require.NoError(t, s.DeletePost(ctx, post.ID))

	_, err := s.GetPost(ctx, post.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
	_, err = s.GetComment(ctx, comment.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
	_, err = s.GetLike(ctx, post.ID, creator.UserID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
	votes, err := s.ListCommentVotesByComment(ctx, comment.ID)
	require.NoError(t, err)
	assert.Empty(t, votes)

	assert.ErrorIs(t, s.DeletePost(ctx, post.ID), repo.ErrNotFound)
}

func testSubscriptions(t *testing.T, s repo.Store) {
	ctx := context.Background()
	creator := SeedCreator(t, s, "eve")
	supporter := newID()
	now := time.Now().UTC()

	sub := &entity.Subscription{
		SupporterID: supporter,
		CreatorID:   creator.ID,
		TierID:      "basic",
		Amount:      500,
		StartDate:   now,
		EndDate:     now.AddDate(0, 0, 30),
		Active:      true,
	}
	require.NoError(t, s.CreateSubscription(ctx, sub))

	dup := *sub
	dup.ID = ""
	assert.ErrorIs(t, s.CreateSubscription(ctx, &dup), repo.ErrConflict)

	changed, err := s.DeactivateSubscription(ctx, sub.ID, now)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = s.DeactivateSubscription(ctx, sub.ID, now)
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = s.DeactivateSubscription(ctx, newID(), now)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	again := *sub
	again.ID = ""
	again.Active = true
	require.NoError(t, s.CreateSubscription(ctx, &again))

	list, err := s.ListSubscriptionsBySupporter(ctx, supporter)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	byCreator, err := s.ListSubscriptionsByCreator(ctx, creator.ID)
	require.NoError(t, err)
	assert.Len(t, byCreator, 2)

	got, err := s.GetSubscription(ctx, again.ID)
	require.NoError(t, err)
	got.EndDate = got.EndDate.AddDate(0, 0, 30)
	require.NoError(t, s.UpdateSubscription(ctx, got))
}

func testUnlocks(t *testing.T, s repo.Store) {
	ctx := context.Background()
	creator := SeedCreator(t, s, "fay")
	buyer := newID()

	post := &entity.Post{CreatorID: creator.ID, Title: "ppv", Content: strPtr("x"), Visibility: entity.VisibilityPPV, Price: 200, Published: true}
	require.NoError(t, s.CreatePost(ctx, post))

	tip := &entity.Tip{SupporterID: buyer, CreatorID: &creator.ID, PostID: &post.ID, Amount: 200, Message: "Unlocked post"}
	require.NoError(t, s.CreateTip(ctx, tip))

	require.NoError(t, s.CreatePostUnlock(ctx, &entity.PostUnlock{PostID: post.ID, UserID: buyer, TipID: tip.ID}))

	second := &entity.Tip{SupporterID: buyer, CreatorID: &creator.ID, PostID: &post.ID, Amount: 200}
	require.NoError(t, s.CreateTip(ctx, second))
	err := s.CreatePostUnlock(ctx, &entity.PostUnlock{PostID: post.ID, UserID: buyer, TipID: second.ID})
	assert.ErrorIs(t, err, repo.ErrConflict)

	unlock, err := s.GetPostUnlock(ctx, post.ID, buyer)
	require.NoError(t, err)
	assert.Equal(t, tip.ID, unlock.TipID)

	tips, err := s.ListTipsByCreator(ctx, creator.ID)
	require.NoError(t, err)
	assert.Len(t, tips, 2)

	unlocks, err := s.ListPostUnlocksByUser(ctx, buyer)
	require.NoError(t, err)
	assert.Len(t, unlocks, 1)
}

func testVotes(t *testing.T, s repo.Store) {
	ctx := context.Background()
	creator := SeedCreator(t, s, "gia")

	post := &entity.Post{CreatorID: creator.ID, Title: "t", Content: strPtr("c"), Visibility: entity.VisibilityPublic, Published: true}
	require.NoError(t, s.CreatePost(ctx, post))

	comment := &entity.Comment{PostID: post.ID, UserID: creator.UserID, Content: "hi"}
	require.NoError(t, s.CreateComment(ctx, comment))

	err := s.CreateComment(ctx, &entity.Comment{PostID: newID(), UserID: creator.UserID, Content: "orphan"})
	assert.ErrorIs(t, err, repo.ErrNotFound)

	voter := newID()
	vote := &entity.CommentVote{CommentID: comment.ID, UserID: voter, VoteType: entity.VoteDown}
	require.NoError(t, s.CreateCommentVote(ctx, vote))
	assert.ErrorIs(t, s.CreateCommentVote(ctx, &entity.CommentVote{CommentID: comment.ID, UserID: voter, VoteType: entity.VoteUp}), repo.ErrConflict)

	got, err := s.GetCommentVote(ctx, comment.ID, voter)
	require.NoError(t, err)
	assert.Equal(t, entity.VoteDown, got.VoteType)

	locked, err := s.LockComment(ctx, comment.ID)
	require.NoError(t, err)
	locked.Downvotes = 1
	locked.IsHidden = true
	require.NoError(t, s.UpdateComment(ctx, locked))

	list, err := s.ListCommentsByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsHidden)
	assert.Equal(t, 1, list[0].Downvotes)

	require.NoError(t, s.DeleteCommentVote(ctx, got.ID))
	require.NoError(t, s.DeleteComment(ctx, comment.ID))
	assert.ErrorIs(t, s.DeleteComment(ctx, comment.ID), repo.ErrNotFound)
}

func testConversations(t *testing.T, s repo.Store) {
	ctx := context.Background()
	alice, bob := newID(), newID()

	conv := &entity.Conversation{ParticipantA: bob, ParticipantB: alice}
	require.NoError(t, s.CreateConversation(ctx, conv))
	assert.True(t, conv.HasParticipant(alice))
	assert.True(t, conv.HasParticipant(bob))

	assert.ErrorIs(t, s.CreateConversation(ctx, &entity.Conversation{ParticipantA: alice, ParticipantB: bob}), repo.ErrConflict)

	found, err := s.GetConversationBetween(ctx, alice, bob)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, found.ID)

	base := time.Now().UTC()
	for i, sender := range []string{alice, bob, alice} {
		msg := &entity.Message{ConversationID: conv.ID, SenderID: sender, Content: string(rune('a' + i)), CreatedAt: base.Add(time.Duration(i) * time.Second)}
		require.NoError(t, s.CreateMessage(ctx, msg))
	}

	msgs, err := s.ListMessages(ctx, conv.ID, 2)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "b", msgs[0].Content)
	assert.Equal(t, "c", msgs[1].Content)

	require.NoError(t, s.MarkMessagesRead(ctx, conv.ID, bob))
	msgs, err = s.ListMessages(ctx, conv.ID, 0)
	require.NoError(t, err)
	for _, m := range msgs {
		assert.Equal(t, m.SenderID == alice, m.Read)
	}

	found.LastMessageAt = base.Add(time.Hour)
	require.NoError(t, s.UpdateConversation(ctx, found))

	list, err := s.ListConversationsByUser(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func testWalletNonces(t *testing.T, s repo.Store) {
	ctx := context.Background()
	expires := time.Now().UTC().Add(5 * time.Minute)

	require.NoError(t, s.UpsertWalletNonce(ctx, &entity.WalletNonce{Address: "0xABC", Nonce: "one", ExpiresAt: expires}))
	require.NoError(t, s.UpsertWalletNonce(ctx, &entity.WalletNonce{Address: "0xabc", Nonce: "two", ExpiresAt: expires}))

	got, err := s.GetWalletNonce(ctx, "0xAbC")
	require.NoError(t, err)
	assert.Equal(t, "two", got.Nonce)

	require.NoError(t, s.DeleteWalletNonce(ctx, "0xabc"))
	_, err = s.GetWalletNonce(ctx, "0xabc")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func testRollback(t *testing.T, s repo.Store) {
	ctx := context.Background()
	creator := SeedCreator(t, s, "hana")
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(tx repo.Store) error {
		locked, err := tx.LockCreator(ctx, creator.ID)
		if err != nil {
			return err
		}
		locked.TotalEarnings += 999
		if err := tx.UpdateCreator(ctx, locked); err != nil {
			return err
		}
		if err := tx.CreateTip(ctx, &entity.Tip{SupporterID: newID(), CreatorID: &creator.ID, Amount: 999}); err != nil {
			return err
		}
		return tx.WithTx(ctx, func(inner repo.Store) error { return boom })
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.GetCreator(ctx, creator.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.TotalEarnings)

	tips, err := s.ListTipsByCreator(ctx, creator.ID)
	require.NoError(t, err)
	assert.Empty(t, tips)
}
