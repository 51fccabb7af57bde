package entitlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fanvault/services/platform/internal/entity"
	"fanvault/services/platform/internal/lifecycle"
	"fanvault/services/platform/internal/repo"
)

// ViewerSnapshot holds everything the decision table needs to know about one
// viewer. The zero value is an anonymous viewer.
type ViewerSnapshot struct {
	ViewerID       string
	OwnedCreatorID string
	Subscriptions  []*entity.Subscription
	UnlockedPosts  map[string]bool
}

func LoadSnapshot(ctx context.Context, store Reader, viewerID string) (*ViewerSnapshot, error) {
	snap := &ViewerSnapshot{ViewerID: viewerID, UnlockedPosts: map[string]bool{}}
	if viewerID == "" {
		return snap, nil
	}

	creator, err := store.GetCreatorByUserID(ctx, viewerID)
	switch {
	case errors.Is(err, repo.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("failed to load viewer creator profile: %w", err)
	default:
		snap.OwnedCreatorID = creator.ID
	}

	snap.Subscriptions, err = store.ListSubscriptionsBySupporter(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load viewer subscriptions: %w", err)
	}

	unlocks, err := store.ListPostUnlocksByUser(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load viewer unlocks: %w", err)
	}
	for _, u := range unlocks {
		snap.UnlockedPosts[u.PostID] = true
	}

	return snap, nil
}

// Decide runs the decision table against the snapshot. It cannot fail.
func (s *ViewerSnapshot) Decide(post *entity.Post, now time.Time) Decision {
	d, _ := decide(context.Background(), post, s.ViewerID, s, now)
	return d
}

func (s *ViewerSnapshot) ownedCreatorID(context.Context) (string, error) {
	return s.OwnedCreatorID, nil
}

func (s *ViewerSnapshot) subscribedTo(_ context.Context, creatorID string, now time.Time) (bool, error) {
	return lifecycle.EffectiveFor(s.Subscriptions, creatorID, now) != nil, nil
}

func (s *ViewerSnapshot) unlocked(_ context.Context, postID string) (bool, error) {
	return s.UnlockedPosts[postID], nil
}
