package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"fanvault/pkg/apperror"
	"fanvault/pkg/logger"
	"fanvault/services/platform/internal/entity"
	"fanvault/services/platform/internal/lifecycle"
	"fanvault/services/platform/internal/notifier"
	"fanvault/services/platform/internal/repo"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var handlePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,50}$`)

type CreatorInput struct {
	Handle      string
	DisplayName string
	Bio         string
	FandomName  string
	Tiers       []entity.Tier
}

// CreatorPatch holds optional profile changes; nil fields are left as is.
type CreatorPatch struct {
	DisplayName *string
	Bio         *string
	FandomName  *string
	Tiers       []entity.Tier
}

type EarningsSummary struct {
	CreatorID         string `json:"creator_id"`
	TotalEarnings     int64  `json:"total_earnings"`
	TipEarnings       int64  `json:"tip_earnings"`
	SubscriptionTotal int64  `json:"subscription_earnings"`
	SubscriberCount   int    `json:"subscriber_count"`
	ActiveSubscribers int    `json:"active_subscribers"`
	TipCount          int    `json:"tip_count"`
	TotalDisplay      string `json:"total_display"`
}

// ActivityFeed reads a creator's recent monetization activity.
// *notifier.Feed satisfies it.
type ActivityFeed interface {
	Recent(ctx context.Context, creatorID string, limit int) ([]notifier.Activity, error)
}

type CreatorUseCase interface {
	BecomeCreator(ctx context.Context, userID string, input CreatorInput) (*entity.Creator, error)
	GetCreatorByHandle(ctx context.Context, handle string) (*entity.Creator, error)
	ListCreators(ctx context.Context, limit, offset int) ([]*entity.Creator, error)
	UpdateCreator(ctx context.Context, userID string, patch CreatorPatch) (*entity.Creator, error)
	GetEarnings(ctx context.Context, userID string) (*EarningsSummary, error)
	GetActivity(ctx context.Context, userID string, limit int) ([]notifier.Activity, error)
}

type creatorUseCase struct {
	store    repo.Store
	activity ActivityFeed
	logger   *logger.Logger
	now      func() time.Time
}

func NewCreatorUseCase(store repo.Store, logger *logger.Logger, opts ...Option) CreatorUseCase {
	o := buildOptions(opts)
	return &creatorUseCase{store: store, activity: o.activity, logger: logger, now: o.now}
}

func normalizeTiers(tiers []entity.Tier) ([]entity.Tier, error) {
	out := make([]entity.Tier, 0, len(tiers))
	seen := make(map[string]bool, len(tiers))
	for _, t := range tiers {
		t.Name = strings.TrimSpace(t.Name)
		if t.Name == "" {
			return nil, invalid("tier name is required")
		}
		if t.Price <= 0 {
			return nil, invalid("tier %q price must be greater than zero", t.Name)
		}
		if t.ID == "" {
			t.ID = uuid.New().String()
		}
		if seen[t.ID] {
			return nil, invalid("duplicate tier id %q", t.ID)
		}
		seen[t.ID] = true
		out = append(out, t)
	}
	return out, nil
}

// BecomeCreator opens a creator profile and switches the user's role.
func (uc *creatorUseCase) BecomeCreator(ctx context.Context, userID string, input CreatorInput) (*entity.Creator, error) {
	if err := requireViewer(userID); err != nil {
		return nil, err
	}

	handle := strings.TrimSpace(input.Handle)
	if !handlePattern.MatchString(handle) {
		return nil, invalid("handle must be 3-50 letters, digits or underscores")
	}
	tiers, err := normalizeTiers(input.Tiers)
	if err != nil {
		return nil, err
	}

	creator := &entity.Creator{
		UserID:      userID,
		Handle:      handle,
		DisplayName: strings.TrimSpace(input.DisplayName),
		Bio:         input.Bio,
		FandomName:  strings.TrimSpace(input.FandomName),
		Tiers:       tiers,
	}

	err = uc.store.WithTx(ctx, func(tx repo.Store) error {
		user, err := tx.GetUser(ctx, userID)
		if err != nil {
			return lookup(err, "User")
		}
		if _, err := tx.GetCreatorByUserID(ctx, userID); err == nil {
			return invalid("user already has a creator profile")
		} else if !errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("failed to check creator profile: %w", err)
		}

		if creator.DisplayName == "" {
			creator.DisplayName = user.DisplayName
		}
		if err := tx.CreateCreator(ctx, creator); err != nil {
			if errors.Is(err, repo.ErrConflict) {
				return invalid("handle %q is already taken", handle)
			}
			return fmt.Errorf("failed to create creator: %w", err)
		}

		user.Role = entity.RoleCreator
		if err := tx.UpdateUser(ctx, user); err != nil {
			return fmt.Errorf("failed to update user role: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("User %s became creator @%s", userID, creator.Handle)
	return creator, nil
}

func (uc *creatorUseCase) GetCreatorByHandle(ctx context.Context, handle string) (*entity.Creator, error) {
	creator, err := uc.store.GetCreatorByHandle(ctx, handle)
	if err != nil {
		return nil, lookup(err, "Creator")
	}
	return creator, nil
}

func (uc *creatorUseCase) ListCreators(ctx context.Context, limit, offset int) ([]*entity.Creator, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	creators, err := uc.store.ListCreators(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list creators: %w", err)
	}
	return creators, nil
}

// UpdateCreator edits the caller's own profile. The row is locked so a
// concurrent earnings accrual is not overwritten.
func (uc *creatorUseCase) UpdateCreator(ctx context.Context, userID string, patch CreatorPatch) (*entity.Creator, error) {
	if err := requireViewer(userID); err != nil {
		return nil, err
	}

	var tiers []entity.Tier
	if patch.Tiers != nil {
		var err error
		if tiers, err = normalizeTiers(patch.Tiers); err != nil {
			return nil, err
		}
	}

	owned, err := uc.store.GetCreatorByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.New(apperror.AccessDenied, "Only creators can edit a creator profile")
		}
		return nil, fmt.Errorf("failed to load creator: %w", err)
	}

	var updated *entity.Creator
	err = uc.store.WithTx(ctx, func(tx repo.Store) error {
		creator, err := tx.LockCreator(ctx, owned.ID)
		if err != nil {
			return lookup(err, "Creator")
		}

		if patch.DisplayName != nil {
			creator.DisplayName = strings.TrimSpace(*patch.DisplayName)
		}
		if patch.Bio != nil {
			creator.Bio = *patch.Bio
		}
		if patch.FandomName != nil {
			creator.FandomName = strings.TrimSpace(*patch.FandomName)
		}
		if patch.Tiers != nil {
			creator.Tiers = tiers
		}

		if err := tx.UpdateCreator(ctx, creator); err != nil {
			return fmt.Errorf("failed to update creator: %w", err)
		}
		updated = creator
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// GetEarnings breaks the creator's earnings down by source. Active
// subscribers are recounted from the subscription set; SubscriberCount is
// the cumulative number of acquisitions.
func (uc *creatorUseCase) GetEarnings(ctx context.Context, userID string) (*EarningsSummary, error) {
	if err := requireViewer(userID); err != nil {
		return nil, err
	}

	creator, err := uc.store.GetCreatorByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.New(apperror.AccessDenied, "Only creators have earnings")
		}
		return nil, fmt.Errorf("failed to load creator: %w", err)
	}

	tips, err := uc.store.ListTipsByCreator(ctx, creator.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tips: %w", err)
	}
	subs, err := uc.store.ListSubscriptionsByCreator(ctx, creator.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscriptions: %w", err)
	}

	summary := &EarningsSummary{
		CreatorID:       creator.ID,
		TotalEarnings:   creator.TotalEarnings,
		SubscriberCount: creator.SubscriberCount,
		TipCount:        len(tips),
		TotalDisplay:    FormatCents(creator.TotalEarnings),
	}
	for _, tip := range tips {
		summary.TipEarnings += tip.Amount
	}

	now := uc.now()
	active := make(map[string]bool)
	for _, sub := range subs {
		summary.SubscriptionTotal += sub.Amount
		if lifecycle.IsEffective(sub, now) {
			active[sub.SupporterID] = true
		}
	}
	summary.ActiveSubscribers = len(active)

	return summary, nil
}

// GetActivity returns the caller's recent activity, newest first. Without a
// feed configured the list is empty.
func (uc *creatorUseCase) GetActivity(ctx context.Context, userID string, limit int) ([]notifier.Activity, error) {
	if err := requireViewer(userID); err != nil {
		return nil, err
	}

	creator, err := uc.store.GetCreatorByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.New(apperror.AccessDenied, "Only creators have an activity feed")
		}
		return nil, fmt.Errorf("failed to load creator: %w", err)
	}

	if uc.activity == nil {
		return []notifier.Activity{}, nil
	}
	activities, err := uc.activity.Recent(ctx, creator.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load activity: %w", err)
	}
	return activities, nil
}

// FormatCents renders an amount in cents as a fixed two-decimal string.
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
