package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fanvault/pkg/apperror"
	"fanvault/pkg/queue"
	"fanvault/services/platform/internal/entity"
	"fanvault/services/platform/internal/lifecycle"
	"fanvault/services/platform/internal/repo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribe_AccruesLedger(t *testing.T) {
	e := newEnv(t)
	uc := e.membership()

	sub, err := uc.Subscribe(context.Background(), e.supporter.ID, e.creator.ID, "basic", 1000)
	require.NoError(t, err)

	assert.True(t, sub.Active)
	assert.Equal(t, testNow, sub.StartDate)
	assert.Equal(t, testNow.Add(30*24*time.Hour), sub.EndDate)

	creator := e.reloadCreator(t)
	assert.Equal(t, int64(1000), creator.TotalEarnings)
	assert.Equal(t, 1, creator.SubscriberCount)
	assert.Equal(t, []string{queue.EventSubscriptionCreated}, e.publisher.Types())
}

func TestSubscribe_SecondWhileEffectiveRejected(t *testing.T) {
	e := newEnv(t)
	uc := e.membership()
	ctx := context.Background()

	_, err := uc.Subscribe(ctx, e.supporter.ID, e.creator.ID, "", 500)
	require.NoError(t, err)

	_, err = uc.Subscribe(ctx, e.supporter.ID, e.creator.ID, "", 500)
	assert.True(t, apperror.Is(err, apperror.DuplicateActiveSubscription))

	creator := e.reloadCreator(t)
	assert.Equal(t, int64(500), creator.TotalEarnings)
	assert.Equal(t, 1, creator.SubscriberCount)
}

func TestSubscribe_AfterExpiryAllowed(t *testing.T) {
	e := newEnv(t)
	uc := e.membership()
	ctx := context.Background()

	first, err := uc.Subscribe(ctx, e.supporter.ID, e.creator.ID, "", 500)
	require.NoError(t, err)

	e.clock.Advance(31 * 24 * time.Hour)
	second, err := uc.Subscribe(ctx, e.supporter.ID, e.creator.ID, "", 700)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	old, err := e.store.GetSubscription(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, old.Active)

	creator := e.reloadCreator(t)
	assert.Equal(t, int64(1200), creator.TotalEarnings)
	assert.Equal(t, 2, creator.SubscriberCount)
}

func TestSubscribe_Validation(t *testing.T) {
	e := newEnv(t)
	uc := e.membership()
	ctx := context.Background()

	_, err := uc.Subscribe(ctx, "", e.creator.ID, "", 500)
	assert.True(t, apperror.Is(err, apperror.AuthenticationRequired))

	_, err = uc.Subscribe(ctx, e.supporter.ID, e.creator.ID, "", 0)
	assert.True(t, apperror.Is(err, apperror.ValidationError))

	_, err = uc.Subscribe(ctx, e.supporter.ID, e.creator.ID, "platinum", 500)
	assert.True(t, apperror.Is(err, apperror.ValidationError))

	_, err = uc.Subscribe(ctx, e.creator.UserID, e.creator.ID, "", 500)
	assert.True(t, apperror.Is(err, apperror.ValidationError))

	_, err = uc.Subscribe(ctx, e.supporter.ID, "missing", "", 500)
	assert.True(t, apperror.Is(err, apperror.NotFound))
}

func TestSubscribe_ConcurrentSinglesWin(t *testing.T) {
	e := newEnv(t)
	uc := e.membership()

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded, duplicates := 0, 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Subscribe(context.Background(), e.supporter.ID, e.creator.ID, "", 500)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case apperror.Is(err, apperror.DuplicateActiveSubscription):
				duplicates++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 19, duplicates)

	creator := e.reloadCreator(t)
	assert.Equal(t, int64(500), creator.TotalEarnings)
	assert.Equal(t, 1, creator.SubscriberCount)
}

func TestCheckSubscriptionStatus(t *testing.T) {
	e := newEnv(t)
	uc := e.membership()
	ctx := context.Background()

	status, err := uc.CheckSubscriptionStatus(ctx, e.supporter.ID, e.creator.ID)
	require.NoError(t, err)
	assert.Equal(t, &SubscriptionStatus{}, status)

	_, err = uc.Subscribe(ctx, e.supporter.ID, e.creator.ID, "", 500)
	require.NoError(t, err)

	e.clock.Advance(12 * time.Hour)
	status, err = uc.CheckSubscriptionStatus(ctx, e.supporter.ID, e.creator.ID)
	require.NoError(t, err)
	assert.True(t, status.Subscribed)
	assert.Equal(t, 30, status.RemainingDays)
	assert.Equal(t, "creator fans", status.FandomBadge)

	_, err = uc.CheckSubscriptionStatus(ctx, "", e.creator.ID)
	assert.True(t, apperror.Is(err, apperror.AuthenticationRequired))

	_, err = uc.CheckSubscriptionStatus(ctx, e.supporter.ID, "missing")
	assert.True(t, apperror.Is(err, apperror.NotFound))
}

func TestCheckSubscriptionStatus_LazyExpiry(t *testing.T) {
	e := newEnv(t)
	uc := e.membership()
	ctx := context.Background()

	sub, err := uc.Subscribe(ctx, e.supporter.ID, e.creator.ID, "", 500)
	require.NoError(t, err)

	e.clock.Advance(30*24*time.Hour + time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, err := uc.CheckSubscriptionStatus(ctx, e.supporter.ID, e.creator.ID)
			assert.NoError(t, err)
			assert.False(t, status.Subscribed)
			assert.Equal(t, 0, status.RemainingDays)
			assert.Empty(t, status.FandomBadge)
		}()
	}
	wg.Wait()

	stored, err := e.store.GetSubscription(ctx, sub.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)
	assert.Equal(t, 1, e.reloadCreator(t).SubscriberCount)
}

func TestRenewSubscription(t *testing.T) {
	e := newEnv(t)
	uc := e.membership()
	ctx := context.Background()

	sub, err := uc.Subscribe(ctx, e.supporter.ID, e.creator.ID, "", 500)
	require.NoError(t, err)

	e.clock.Advance(25 * 24 * time.Hour)
	renewed, err := uc.RenewSubscription(ctx, e.supporter.ID, sub.ID, 30)
	require.NoError(t, err)
	assert.Equal(t, e.clock.Now().Add(35*24*time.Hour), renewed.EndDate)
	assert.True(t, renewed.Active)

	e.clock.Advance(100 * 24 * time.Hour)
	renewed, err = uc.RenewSubscription(ctx, e.supporter.ID, sub.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, e.clock.Now().Add(lifecycle.DefaultPeriodDays*24*time.Hour), renewed.EndDate)

	other := newUser(t, e.store, "other@example.com")
	_, err = uc.RenewSubscription(ctx, other.ID, sub.ID, 30)
	assert.True(t, apperror.Is(err, apperror.AccessDenied))

	_, err = uc.RenewSubscription(ctx, e.supporter.ID, "missing", 30)
	assert.True(t, apperror.Is(err, apperror.NotFound))
}

func TestRenewSubscription_RejectedWhileAnotherIsEffective(t *testing.T) {
	e := newEnv(t)
	uc := e.membership()
	ctx := context.Background()

	first, err := uc.Subscribe(ctx, e.supporter.ID, e.creator.ID, "", 500)
	require.NoError(t, err)
	_, err = uc.CancelSubscription(ctx, e.supporter.ID, first.ID)
	require.NoError(t, err)
	_, err = uc.Subscribe(ctx, e.supporter.ID, e.creator.ID, "", 500)
	require.NoError(t, err)

	_, err = uc.RenewSubscription(ctx, e.supporter.ID, first.ID, 30)
	assert.True(t, apperror.Is(err, apperror.DuplicateActiveSubscription))
}

func TestCancelSubscription_KeepsSubscriberCount(t *testing.T) {
	e := newEnv(t)
	uc := e.membership()
	ctx := context.Background()

	sub, err := uc.Subscribe(ctx, e.supporter.ID, e.creator.ID, "", 500)
	require.NoError(t, err)

	cancelled, err := uc.CancelSubscription(ctx, e.supporter.ID, sub.ID)
	require.NoError(t, err)
	assert.False(t, cancelled.Active)

	_, err = uc.CancelSubscription(ctx, e.supporter.ID, sub.ID)
	require.NoError(t, err)

	creator := e.reloadCreator(t)
	assert.Equal(t, 1, creator.SubscriberCount)
	assert.Equal(t, int64(500), creator.TotalEarnings)

	status, err := uc.CheckSubscriptionStatus(ctx, e.supporter.ID, e.creator.ID)
	require.NoError(t, err)
	assert.False(t, status.Subscribed)
}

func TestListSubscriptions_ExpiresStale(t *testing.T) {
	e := newEnv(t)
	uc := e.membership()
	ctx := context.Background()

	_, err := uc.Subscribe(ctx, e.supporter.ID, e.creator.ID, "", 500)
	require.NoError(t, err)
	e.clock.Advance(40 * 24 * time.Hour)

	subs, err := uc.ListSubscriptions(ctx, e.supporter.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.False(t, subs[0].Active)
}

func TestTip(t *testing.T) {
	e := newEnv(t)
	uc := e.membership()
	ctx := context.Background()

	tip, err := uc.Tip(ctx, e.supporter.ID, TipInput{CreatorID: &e.creator.ID, Amount: 250, Message: "thanks"})
	require.NoError(t, err)
	assert.NotEmpty(t, tip.ID)
	assert.Equal(t, int64(250), e.reloadCreator(t).TotalEarnings)

	_, err = uc.Tip(ctx, e.supporter.ID, TipInput{Amount: 900})
	require.NoError(t, err)
	assert.Equal(t, int64(250), e.reloadCreator(t).TotalEarnings)

	_, err = uc.Tip(ctx, e.supporter.ID, TipInput{CreatorID: &e.creator.ID, Amount: -1})
	assert.True(t, apperror.Is(err, apperror.ValidationError))

	missing := "missing"
	_, err = uc.Tip(ctx, e.supporter.ID, TipInput{CreatorID: &missing, Amount: 100})
	assert.True(t, apperror.Is(err, apperror.NotFound))

	assert.Equal(t, []string{queue.EventTipCreated, queue.EventTipCreated}, e.publisher.Types())
}

func TestUnlockPost_SingleUse(t *testing.T) {
	e := newEnv(t)
	uc := e.membership()
	ctx := context.Background()
	post := e.post(t, entity.VisibilityPPV, 500)

	result, err := uc.UnlockPost(ctx, e.supporter.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Tip.ID, result.Unlock.TipID)
	assert.Equal(t, int64(500), result.Tip.Amount)
	assert.Equal(t, UnlockTipMessage, result.Tip.Message)
	require.NotNil(t, result.Tip.PostID)
	assert.Equal(t, post.ID, *result.Tip.PostID)

	_, err = uc.UnlockPost(ctx, e.supporter.ID, post.ID)
	assert.True(t, apperror.Is(err, apperror.AlreadyUnlocked))

	tips, err := e.store.ListTipsByCreator(ctx, e.creator.ID)
	require.NoError(t, err)
	assert.Len(t, tips, 1)
	assert.Equal(t, int64(500), e.reloadCreator(t).TotalEarnings)

	d, err := e.evaluator.Evaluate(ctx, post, e.supporter.ID)
	require.NoError(t, err)
	assert.True(t, d.HasAccess)
}

func TestUnlockPost_Rejections(t *testing.T) {
	e := newEnv(t)
	uc := e.membership()
	ctx := context.Background()

	_, err := uc.UnlockPost(ctx, "", "any")
	assert.True(t, apperror.Is(err, apperror.AuthenticationRequired))

	_, err = uc.UnlockPost(ctx, e.supporter.ID, "missing")
	assert.True(t, apperror.Is(err, apperror.NotFound))

	members := e.post(t, entity.VisibilityMembers, 0)
	_, err = uc.UnlockPost(ctx, e.supporter.ID, members.ID)
	assert.True(t, apperror.Is(err, apperror.ValidationError))
}

func TestUnlockPost_ConcurrentChargesOnce(t *testing.T) {
	e := newEnv(t)
	uc := e.membership()
	post := e.post(t, entity.VisibilityPPV, 300)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.UnlockPost(context.Background(), e.supporter.ID, post.ID)
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.True(t, apperror.Is(err, apperror.AlreadyUnlocked), err.Error())
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, int64(300), e.reloadCreator(t).TotalEarnings)
}

// failingUnlockStore fails PostUnlock inserts, inside transactions too.
type failingUnlockStore struct {
	repo.Store
}

func (s failingUnlockStore) WithTx(ctx context.Context, fn func(tx repo.Store) error) error {
	return s.Store.WithTx(ctx, func(tx repo.Store) error {
		return fn(failingUnlockStore{Store: tx})
	})
}

func (failingUnlockStore) CreatePostUnlock(context.Context, *entity.PostUnlock) error {
	return errors.New("disk full")
}

func TestUnlockPost_FailureLeavesNoOrphanTip(t *testing.T) {
	e := newEnv(t)
	uc := NewMembershipUseCase(failingUnlockStore{Store: e.store}, nil, e.log, WithClock(e.clock.Now))
	post := e.post(t, entity.VisibilityPPV, 400)

	_, err := uc.UnlockPost(context.Background(), e.supporter.ID, post.ID)
	require.Error(t, err)
	assert.Equal(t, apperror.Internal, apperror.KindOf(err))

	tips, err := e.store.ListTipsByCreator(context.Background(), e.creator.ID)
	require.NoError(t, err)
	assert.Empty(t, tips)
	assert.Equal(t, int64(0), e.reloadCreator(t).TotalEarnings)
}
