package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fanvault/pkg/apperror"
	"fanvault/pkg/logger"
	"fanvault/pkg/metrics"
	"fanvault/pkg/queue"
	"fanvault/services/platform/internal/entity"
	"fanvault/services/platform/internal/lifecycle"
	"fanvault/services/platform/internal/repo"
)

const UnlockTipMessage = "Unlocked post"

type SubscriptionStatus struct {
	Subscribed    bool   `json:"subscribed"`
	RemainingDays int    `json:"remaining_days"`
	FandomBadge   string `json:"fandom_badge"`
}

type UnlockResult struct {
	Unlock *entity.PostUnlock `json:"unlock"`
	Tip    *entity.Tip        `json:"tip"`
}

type TipInput struct {
	CreatorID *string
	PostID    *string
	Amount    int64
	Message   string
}

// MembershipUseCase owns subscriptions, tips and unlocks, and with them
// every change to a creator's earnings and subscriber count.
type MembershipUseCase interface {
	CheckSubscriptionStatus(ctx context.Context, viewerID, creatorID string) (*SubscriptionStatus, error)
	Subscribe(ctx context.Context, supporterID, creatorID, tierID string, amount int64) (*entity.Subscription, error)
	RenewSubscription(ctx context.Context, userID, subscriptionID string, days int) (*entity.Subscription, error)
	CancelSubscription(ctx context.Context, userID, subscriptionID string) (*entity.Subscription, error)
	ListSubscriptions(ctx context.Context, userID string) ([]*entity.Subscription, error)
	Tip(ctx context.Context, supporterID string, input TipInput) (*entity.Tip, error)
	UnlockPost(ctx context.Context, viewerID, postID string) (*UnlockResult, error)
}

type membershipUseCase struct {
	store     repo.Store
	publisher EventPublisher
	logger    *logger.Logger
	now       func() time.Time
}

func NewMembershipUseCase(store repo.Store, publisher EventPublisher, logger *logger.Logger, opts ...Option) MembershipUseCase {
	o := buildOptions(opts)
	return &membershipUseCase{
		store:     store,
		publisher: publisher,
		logger:    logger,
		now:       o.now,
	}
}

// expireStale persists Active=false on every subscription in subs whose
// window closed. It returns how many rows changed.
func expireStale(ctx context.Context, store repo.SubscriptionRepository, subs []*entity.Subscription, now time.Time) (int, error) {
	expired := 0
	for i, sub := range subs {
		updated, needed := lifecycle.Expire(sub, now)
		if !needed {
			continue
		}
		changed, err := store.DeactivateSubscription(ctx, sub.ID, now)
		if err != nil {
			return expired, fmt.Errorf("failed to expire subscription: %w", err)
		}
		if changed {
			expired++
		}
		subs[i] = updated
	}
	return expired, nil
}

func forCreator(subs []*entity.Subscription, creatorID string) []*entity.Subscription {
	out := make([]*entity.Subscription, 0, len(subs))
	for _, sub := range subs {
		if sub.CreatorID == creatorID {
			out = append(out, sub)
		}
	}
	return out
}

func (uc *membershipUseCase) CheckSubscriptionStatus(ctx context.Context, viewerID, creatorID string) (*SubscriptionStatus, error) {
	if err := requireViewer(viewerID); err != nil {
		return nil, err
	}

	creator, err := uc.store.GetCreator(ctx, creatorID)
	if err != nil {
		return nil, lookup(err, "Creator")
	}

	subs, err := uc.store.ListSubscriptionsBySupporter(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscriptions: %w", err)
	}
	subs = forCreator(subs, creatorID)

	now := uc.now()
	expired, err := expireStale(ctx, uc.store, subs, now)
	if err != nil {
		return nil, err
	}
	if expired > 0 {
		metrics.LazyExpirations.Add(float64(expired))
		uc.logger.Debug("Expired %d stale subscriptions for supporter %s", expired, viewerID)
	}

	status := &SubscriptionStatus{}
	if sub := lifecycle.EffectiveFor(subs, creatorID, now); sub != nil {
		status.Subscribed = true
		status.RemainingDays = lifecycle.RemainingDays(sub, now)
		status.FandomBadge = creator.FandomName
	}
	return status, nil
}

func (uc *membershipUseCase) Subscribe(ctx context.Context, supporterID, creatorID, tierID string, amount int64) (*entity.Subscription, error) {
	if err := requireViewer(supporterID); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, invalid("amount must be greater than zero")
	}

	var sub *entity.Subscription
	expired := 0
	err := uc.store.WithTx(ctx, func(tx repo.Store) error {
		creator, err := tx.LockCreator(ctx, creatorID)
		if err != nil {
			return lookup(err, "Creator")
		}
		if creator.UserID == supporterID {
			return invalid("creators cannot subscribe to themselves")
		}
		if tierID != "" {
			if _, ok := creator.Tier(tierID); !ok {
				return invalid("unknown tier %q", tierID)
			}
		}

		existing, err := tx.ListSubscriptionsBySupporter(ctx, supporterID)
		if err != nil {
			return fmt.Errorf("failed to load subscriptions: %w", err)
		}
		existing = forCreator(existing, creatorID)

		now := uc.now()
		if lifecycle.EffectiveFor(existing, creatorID, now) != nil {
			return apperror.New(apperror.DuplicateActiveSubscription, "An active subscription to this creator already exists")
		}
		if expired, err = expireStale(ctx, tx, existing, now); err != nil {
			return err
		}

		sub = &entity.Subscription{
			SupporterID: supporterID,
			CreatorID:   creatorID,
			TierID:      tierID,
			Amount:      amount,
			StartDate:   now,
			EndDate:     lifecycle.PeriodEnd(now),
			Active:      true,
		}
		if err := tx.CreateSubscription(ctx, sub); err != nil {
			if errors.Is(err, repo.ErrConflict) {
				return apperror.New(apperror.DuplicateActiveSubscription, "An active subscription to this creator already exists")
			}
			return fmt.Errorf("failed to create subscription: %w", err)
		}

		creator.TotalEarnings += amount
		creator.SubscriberCount++
		if err := tx.UpdateCreator(ctx, creator); err != nil {
			return fmt.Errorf("failed to update creator ledger: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if expired > 0 {
		metrics.LazyExpirations.Add(float64(expired))
	}
	recordMonetization(queue.EventSubscriptionCreated, amount)
	uc.logger.Info("Supporter %s subscribed to creator %s for %d", supporterID, creatorID, amount)
	publish(uc.publisher, uc.logger, queue.Event{
		Type:       queue.EventSubscriptionCreated,
		CreatorID:  creatorID,
		ActorID:    supporterID,
		SubjectID:  sub.ID,
		Amount:     amount,
		Priority:   5,
		OccurredAt: sub.StartDate,
	})

	return sub, nil
}

func (uc *membershipUseCase) RenewSubscription(ctx context.Context, userID, subscriptionID string, days int) (*entity.Subscription, error) {
	if err := requireViewer(userID); err != nil {
		return nil, err
	}

	current, err := uc.store.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, lookup(err, "Subscription")
	}
	if current.SupporterID != userID {
		return nil, apperror.New(apperror.AccessDenied, "You can only renew your own subscriptions")
	}

	var renewed *entity.Subscription
	err = uc.store.WithTx(ctx, func(tx repo.Store) error {
		if _, err := tx.LockCreator(ctx, current.CreatorID); err != nil {
			return lookup(err, "Creator")
		}

		sub, err := tx.GetSubscription(ctx, subscriptionID)
		if err != nil {
			return lookup(err, "Subscription")
		}

		siblings, err := tx.ListSubscriptionsBySupporter(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to load subscriptions: %w", err)
		}
		others := make([]*entity.Subscription, 0)
		for _, s := range forCreator(siblings, sub.CreatorID) {
			if s.ID != sub.ID {
				others = append(others, s)
			}
		}

		now := uc.now()
		if lifecycle.EffectiveFor(others, sub.CreatorID, now) != nil {
			return apperror.New(apperror.DuplicateActiveSubscription, "Another active subscription to this creator exists")
		}
		if _, err := expireStale(ctx, tx, others, now); err != nil {
			return err
		}

		sub.EndDate = lifecycle.RenewedEndDate(sub.EndDate, now, days)
		sub.Active = true
		if err := tx.UpdateSubscription(ctx, sub); err != nil {
			if errors.Is(err, repo.ErrConflict) {
				return apperror.New(apperror.DuplicateActiveSubscription, "Another active subscription to this creator exists")
			}
			return fmt.Errorf("failed to renew subscription: %w", err)
		}
		renewed = sub
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("Subscription %s renewed until %s", renewed.ID, renewed.EndDate.Format(time.RFC3339))
	publish(uc.publisher, uc.logger, queue.Event{
		Type:      queue.EventSubscriptionRenewed,
		CreatorID: renewed.CreatorID,
		ActorID:   userID,
		SubjectID: renewed.ID,
		Priority:  3,
	})

	return renewed, nil
}

// CancelSubscription stops the subscription now. SubscriberCount counts
// acquisitions, so it is left alone.
func (uc *membershipUseCase) CancelSubscription(ctx context.Context, userID, subscriptionID string) (*entity.Subscription, error) {
	if err := requireViewer(userID); err != nil {
		return nil, err
	}

	sub, err := uc.store.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, lookup(err, "Subscription")
	}
	if sub.SupporterID != userID {
		return nil, apperror.New(apperror.AccessDenied, "You can only cancel your own subscriptions")
	}

	now := uc.now()
	if _, err := uc.store.DeactivateSubscription(ctx, sub.ID, now); err != nil {
		return nil, fmt.Errorf("failed to cancel subscription: %w", err)
	}
	sub.Active = false
	return sub, nil
}

func (uc *membershipUseCase) ListSubscriptions(ctx context.Context, userID string) ([]*entity.Subscription, error) {
	if err := requireViewer(userID); err != nil {
		return nil, err
	}

	subs, err := uc.store.ListSubscriptionsBySupporter(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscriptions: %w", err)
	}

	expired, err := expireStale(ctx, uc.store, subs, uc.now())
	if err != nil {
		return nil, err
	}
	if expired > 0 {
		metrics.LazyExpirations.Add(float64(expired))
	}
	return subs, nil
}

// Tip records a tip. Earnings accrue only when the tip names a creator.
func (uc *membershipUseCase) Tip(ctx context.Context, supporterID string, input TipInput) (*entity.Tip, error) {
	if err := requireViewer(supporterID); err != nil {
		return nil, err
	}
	if input.Amount <= 0 {
		return nil, invalid("amount must be greater than zero")
	}

	tip := &entity.Tip{
		SupporterID: supporterID,
		CreatorID:   input.CreatorID,
		PostID:      input.PostID,
		Amount:      input.Amount,
		Message:     input.Message,
	}

	err := uc.store.WithTx(ctx, func(tx repo.Store) error {
		if tip.PostID != nil {
			if _, err := tx.GetPost(ctx, *tip.PostID); err != nil {
				return lookup(err, "Post")
			}
		}

		var creator *entity.Creator
		if tip.CreatorID != nil {
			var err error
			if creator, err = tx.LockCreator(ctx, *tip.CreatorID); err != nil {
				return lookup(err, "Creator")
			}
		}

		if err := tx.CreateTip(ctx, tip); err != nil {
			return fmt.Errorf("failed to create tip: %w", err)
		}

		if creator != nil {
			creator.TotalEarnings += tip.Amount
			if err := tx.UpdateCreator(ctx, creator); err != nil {
				return fmt.Errorf("failed to update creator ledger: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	event := queue.Event{
		Type:       queue.EventTipCreated,
		ActorID:    supporterID,
		SubjectID:  tip.ID,
		Amount:     tip.Amount,
		Priority:   5,
		OccurredAt: tip.CreatedAt,
	}
	if tip.CreatorID != nil {
		event.CreatorID = *tip.CreatorID
		recordMonetization(queue.EventTipCreated, tip.Amount)
	} else {
		recordMonetization(queue.EventTipCreated, 0)
	}
	publish(uc.publisher, uc.logger, event)

	return tip, nil
}

// UnlockPost buys permanent access to a ppv post. The tip, the unlock and
// the earnings accrual commit together or not at all.
func (uc *membershipUseCase) UnlockPost(ctx context.Context, viewerID, postID string) (*UnlockResult, error) {
	if err := requireViewer(viewerID); err != nil {
		return nil, err
	}

	result := &UnlockResult{}
	err := uc.store.WithTx(ctx, func(tx repo.Store) error {
		post, err := tx.LockPost(ctx, postID)
		if err != nil {
			return lookup(err, "Post")
		}
		if post.Visibility != entity.VisibilityPPV {
			return invalid("only pay-per-view posts can be unlocked")
		}
		if post.Price <= 0 {
			return invalid("post has no unlock price")
		}

		_, err = tx.GetPostUnlock(ctx, post.ID, viewerID)
		switch {
		case err == nil:
			return apperror.New(apperror.AlreadyUnlocked, "Post already unlocked")
		case !errors.Is(err, repo.ErrNotFound):
			return fmt.Errorf("failed to check unlock: %w", err)
		}

		tip := &entity.Tip{
			SupporterID: viewerID,
			PostID:      ptr(post.ID),
			Amount:      post.Price,
			Message:     UnlockTipMessage,
		}
		if post.CreatorID != "" {
			tip.CreatorID = ptr(post.CreatorID)
		}
		if err := tx.CreateTip(ctx, tip); err != nil {
			return fmt.Errorf("failed to create unlock tip: %w", err)
		}

		unlock := &entity.PostUnlock{PostID: post.ID, UserID: viewerID, TipID: tip.ID}
		if err := tx.CreatePostUnlock(ctx, unlock); err != nil {
			if errors.Is(err, repo.ErrConflict) {
				return apperror.New(apperror.AlreadyUnlocked, "Post already unlocked")
			}
			return fmt.Errorf("failed to create unlock: %w", err)
		}

		if post.CreatorID != "" {
			creator, err := tx.LockCreator(ctx, post.CreatorID)
			if err != nil {
				return lookup(err, "Creator")
			}
			creator.TotalEarnings += post.Price
			if err := tx.UpdateCreator(ctx, creator); err != nil {
				return fmt.Errorf("failed to update creator ledger: %w", err)
			}
		}

		result.Unlock, result.Tip = unlock, tip
		return nil
	})
	if err != nil {
		return nil, err
	}

	recordMonetization(queue.EventPostUnlocked, result.Tip.Amount)
	uc.logger.Info("User %s unlocked post %s for %d", viewerID, postID, result.Tip.Amount)
	event := queue.Event{
		Type:       queue.EventPostUnlocked,
		ActorID:    viewerID,
		SubjectID:  postID,
		Amount:     result.Tip.Amount,
		Priority:   7,
		OccurredAt: result.Unlock.CreatedAt,
	}
	if result.Tip.CreatorID != nil {
		event.CreatorID = *result.Tip.CreatorID
	}
	publish(uc.publisher, uc.logger, event)

	return result, nil
}
