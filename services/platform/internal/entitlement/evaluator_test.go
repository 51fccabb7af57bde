package entitlement

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"fanvault/pkg/apperror"
	"fanvault/services/platform/internal/entity"
	"fanvault/services/platform/internal/repo"
	"fanvault/services/platform/internal/repo/memory"
	"fanvault/services/platform/internal/repo/repotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var now = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

type fixture struct {
	store     *memory.Store
	evaluator *Evaluator
	creator   *entity.Creator
	viewer    *entity.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	creator := repotest.SeedCreator(t, store, "c1")

	viewer := &entity.User{Email: "viewer@example.com", PasswordHash: "x", Role: entity.RoleSupporter}
	require.NoError(t, store.CreateUser(context.Background(), viewer))

	return &fixture{
		store:     store,
		evaluator: NewEvaluator(store, WithClock(func() time.Time { return now })),
		creator:   creator,
		viewer:    viewer,
	}
}

func (f *fixture) post(t *testing.T, visibility entity.Visibility, price int64) *entity.Post {
	t.Helper()
	post := &entity.Post{
		CreatorID:  f.creator.ID,
		Title:      "post",
		Content:    strPtr(strings.Repeat("x", 250)),
		MediaURL:   strPtr("https://cdn.example.com/a.jpg"),
		MediaType:  entity.MediaTypeImage,
		Visibility: visibility,
		Price:      price,
		Published:  true,
	}
	require.NoError(t, f.store.CreatePost(context.Background(), post))
	return post
}

func TestEvaluate_PublicGrantedToAnyone(t *testing.T) {
	f := newFixture(t)
	post := f.post(t, entity.VisibilityPublic, 0)

	d, err := f.evaluator.Evaluate(context.Background(), post, "")
	require.NoError(t, err)
	assert.True(t, d.HasAccess)
	assert.False(t, d.IsCreatorOwner)

	d, err = f.evaluator.Evaluate(context.Background(), post, f.creator.UserID)
	require.NoError(t, err)
	assert.True(t, d.HasAccess)
	assert.True(t, d.IsCreatorOwner)
}

func TestEvaluate_AnonymousNeedsAuthentication(t *testing.T) {
	f := newFixture(t)

	for _, v := range []entity.Visibility{entity.VisibilityMembers, entity.VisibilityPPV} {
		d, err := f.evaluator.Evaluate(context.Background(), f.post(t, v, 100), "")
		require.NoError(t, err)
		assert.False(t, d.HasAccess)
		assert.Equal(t, apperror.AuthenticationRequired, d.Reason)
		assert.True(t, apperror.Is(d.Err(), apperror.AuthenticationRequired))
	}
}

func TestEvaluate_MembersWithoutSubscription(t *testing.T) {
	f := newFixture(t)
	post := f.post(t, entity.VisibilityMembers, 0)

	d, err := f.evaluator.Evaluate(context.Background(), post, f.viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, Decision{HasAccess: false, Reason: apperror.SubscriptionRequired}, d)

	view := Redact(post, d)
	assert.True(t, view.IsLocked)
	assert.Nil(t, view.MediaURL)
	require.NotNil(t, view.Content)
	assert.LessOrEqual(t, len([]rune(*view.Content)), 103)
	assert.True(t, strings.HasSuffix(*view.Content, "..."))
	assert.Nil(t, view.UnlockPrice)
}

func TestEvaluate_MembersSubscriptionWindow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	post := f.post(t, entity.VisibilityMembers, 0)

	stale := &entity.Subscription{
		SupporterID: f.viewer.ID, CreatorID: f.creator.ID, Amount: 500,
		StartDate: now.AddDate(0, 0, -31), EndDate: now.Add(-time.Second), Active: true,
	}
	require.NoError(t, f.store.CreateSubscription(ctx, stale))

	d, err := f.evaluator.Evaluate(ctx, post, f.viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, apperror.SubscriptionRequired, d.Reason)

	stored, err := f.store.GetSubscription(ctx, stale.ID)
	require.NoError(t, err)
	assert.True(t, stored.Active, "evaluation does not write")

	_, err = f.store.DeactivateSubscription(ctx, stale.ID, now)
	require.NoError(t, err)
	current := &entity.Subscription{
		SupporterID: f.viewer.ID, CreatorID: f.creator.ID, Amount: 500,
		StartDate: now, EndDate: now.Add(time.Second), Active: true,
	}
	require.NoError(t, f.store.CreateSubscription(ctx, current))

	d, err = f.evaluator.Evaluate(ctx, post, f.viewer.ID)
	require.NoError(t, err)
	assert.True(t, d.HasAccess)
}

func TestEvaluate_SubscriptionToOtherCreatorDoesNotCount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	other := repotest.SeedCreator(t, f.store, "c2")
	post := f.post(t, entity.VisibilityMembers, 0)

	require.NoError(t, f.store.CreateSubscription(ctx, &entity.Subscription{
		SupporterID: f.viewer.ID, CreatorID: other.ID, Amount: 500,
		StartDate: now, EndDate: now.AddDate(0, 0, 30), Active: true,
	}))

	d, err := f.evaluator.Evaluate(ctx, post, f.viewer.ID)
	require.NoError(t, err)
	assert.False(t, d.HasAccess)
}

func TestEvaluate_PPVWithUnlock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	post := f.post(t, entity.VisibilityPPV, 500)

	d, err := f.evaluator.Evaluate(ctx, post, f.viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, apperror.PaymentRequired, d.Reason)

	view := Redact(post, d)
	require.NotNil(t, view.UnlockPrice)
	assert.Equal(t, int64(500), *view.UnlockPrice)

	tip := &entity.Tip{SupporterID: f.viewer.ID, CreatorID: &f.creator.ID, PostID: &post.ID, Amount: 500}
	require.NoError(t, f.store.CreateTip(ctx, tip))
	require.NoError(t, f.store.CreatePostUnlock(ctx, &entity.PostUnlock{PostID: post.ID, UserID: f.viewer.ID, TipID: tip.ID}))

	d, err = f.evaluator.Evaluate(ctx, post, f.viewer.ID)
	require.NoError(t, err)
	assert.True(t, d.HasAccess)
	assert.Equal(t, entity.PostView{Post: *post}, Redact(post, d))
}

func TestEvaluate_OwnerSeesEverything(t *testing.T) {
	f := newFixture(t)

	for _, v := range []entity.Visibility{entity.VisibilityMembers, entity.VisibilityPPV, entity.Visibility("secret")} {
		post := f.post(t, v, 100)
		d, err := f.evaluator.Evaluate(context.Background(), post, f.creator.UserID)
		require.NoError(t, err)
		assert.Equal(t, Decision{HasAccess: true, IsCreatorOwner: true}, d, string(v))
	}
}

func TestEvaluate_UnknownVisibility(t *testing.T) {
	f := newFixture(t)
	post := f.post(t, entity.Visibility("secret"), 0)

	d, err := f.evaluator.Evaluate(context.Background(), post, f.viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, apperror.UnknownVisibility, d.Reason)
}

type failingReader struct {
	Reader
}

func (failingReader) GetCreatorByUserID(context.Context, string) (*entity.Creator, error) {
	return nil, errors.New("connection reset")
}

func TestEvaluate_StoreFailureIsAnError(t *testing.T) {
	e := NewEvaluator(failingReader{})
	post := &entity.Post{ID: "p", CreatorID: "c", Visibility: entity.VisibilityMembers}

	_, err := e.Evaluate(context.Background(), post, "viewer")
	assert.Error(t, err)
	assert.Equal(t, apperror.Internal, apperror.KindOf(err))
}

func TestEvaluateAll_MatchesEvaluate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	posts := []*entity.Post{
		f.post(t, entity.VisibilityPublic, 0),
		f.post(t, entity.VisibilityMembers, 0),
		f.post(t, entity.VisibilityPPV, 300),
	}
	tip := &entity.Tip{SupporterID: f.viewer.ID, CreatorID: &f.creator.ID, PostID: &posts[2].ID, Amount: 300}
	require.NoError(t, f.store.CreateTip(ctx, tip))
	require.NoError(t, f.store.CreatePostUnlock(ctx, &entity.PostUnlock{PostID: posts[2].ID, UserID: f.viewer.ID, TipID: tip.ID}))

	for _, viewer := range []string{"", f.viewer.ID, f.creator.UserID} {
		views, err := f.evaluator.EvaluateAll(ctx, posts, viewer)
		require.NoError(t, err)
		require.Len(t, views, len(posts))

		for i, post := range posts {
			d, err := f.evaluator.Evaluate(ctx, post, viewer)
			require.NoError(t, err)
			assert.Equal(t, Redact(post, d), views[i])
		}
	}
}

var visibilities = []entity.Visibility{
	entity.VisibilityPublic, entity.VisibilityMembers, entity.VisibilityPPV, entity.Visibility("other"),
}

func drawPost(t *rapid.T, creatorID string) *entity.Post {
	var content *string
	if rapid.Bool().Draw(t, "has_content") {
		c := rapid.String().Draw(t, "content")
		content = &c
	}
	return &entity.Post{
		ID:         rapid.StringMatching(`p[0-9]{1,4}`).Draw(t, "post_id"),
		CreatorID:  creatorID,
		Content:    content,
		MediaURL:   strPtr("https://cdn.example.com/m.mp4"),
		MediaType:  entity.MediaTypeVideo,
		Visibility: rapid.SampledFrom(visibilities).Draw(t, "visibility"),
		Price:      rapid.Int64Range(0, 10_000).Draw(t, "price"),
	}
}

func TestRedact_PublicIsUnchanged(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		post := drawPost(t, "c1")
		post.Visibility = entity.VisibilityPublic
		d := Decision{
			HasAccess:      rapid.Bool().Draw(t, "has_access"),
			IsCreatorOwner: rapid.Bool().Draw(t, "owner"),
			Reason:         apperror.SubscriptionRequired,
		}

		view := Redact(post, d)
		if view.IsLocked || view.UnlockPrice != nil {
			t.Fatalf("public post locked: %+v", view)
		}
		if view.Post.Content != post.Content || view.Post.MediaURL != post.MediaURL {
			t.Fatalf("public post content changed")
		}
	})
}

func TestDecide_OwnerAlwaysGranted(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		creatorID := rapid.StringMatching(`c[0-9]{1,3}`).Draw(t, "creator_id")
		post := drawPost(t, creatorID)
		snap := &ViewerSnapshot{ViewerID: "owner-user", OwnedCreatorID: creatorID}

		d := snap.Decide(post, now)
		if !d.HasAccess || !d.IsCreatorOwner {
			t.Fatalf("owner denied on %s post: %+v", post.Visibility, d)
		}
	})
}

func TestRedact_DeniedPreviewBounded(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		post := drawPost(t, "c1")
		if post.Visibility == entity.VisibilityPublic {
			post.Visibility = entity.VisibilityMembers
		}

		view := Redact(post, denied(apperror.SubscriptionRequired))
		if !view.IsLocked || view.MediaURL != nil || view.Content == nil {
			t.Fatalf("denied view not redacted: %+v", view)
		}
		if n := len([]rune(*view.Content)); n > previewRunes+len(ellipsis) {
			t.Fatalf("preview too long: %d runes", n)
		}
		if post.Content == nil && *view.Content != LockedPlaceholder {
			t.Fatalf("missing placeholder")
		}
		if (view.UnlockPrice != nil) != (post.Visibility == entity.VisibilityPPV) {
			t.Fatalf("unlock price presence wrong for %s", post.Visibility)
		}
	})
}

var _ Reader = repo.Store(nil)
