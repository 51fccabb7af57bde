// Package entitlement decides whether a viewer may see a post's full content
// and builds the redacted view shown when they may not.
//
// The decision order is fixed, first match wins:
//
//  1. public posts are granted (ownership is still reported)
//  2. anonymous viewers are denied with AuthenticationRequired
//  3. the post's own creator is granted
//  4. members posts need an effective subscription to the creator
//  5. ppv posts need a PostUnlock for (post, viewer)
//  6. anything else is denied with UnknownVisibility
//
// Evaluation never writes. Stale active subscriptions are treated as
// expired here; persisting the expiry belongs to the status check.
package entitlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fanvault/pkg/apperror"
	"fanvault/pkg/metrics"
	"fanvault/services/platform/internal/entity"
	"fanvault/services/platform/internal/lifecycle"
	"fanvault/services/platform/internal/repo"
)

// Reader is the slice of the entity store the evaluator reads.
type Reader interface {
	GetCreatorByUserID(ctx context.Context, userID string) (*entity.Creator, error)
	ListSubscriptionsBySupporter(ctx context.Context, supporterID string) ([]*entity.Subscription, error)
	GetPostUnlock(ctx context.Context, postID, userID string) (*entity.PostUnlock, error)
	ListPostUnlocksByUser(ctx context.Context, userID string) ([]*entity.PostUnlock, error)
}

type Decision struct {
	HasAccess      bool          `json:"has_access"`
	Reason         apperror.Kind `json:"reason,omitempty"`
	IsCreatorOwner bool          `json:"is_creator_owner"`
}

// Err returns the denial as an *apperror.Error, or nil when access is granted.
func (d Decision) Err() error {
	if d.HasAccess {
		return nil
	}
	return apperror.New(d.Reason, denialMessage(d.Reason))
}

func denialMessage(kind apperror.Kind) string {
	switch kind {
	case apperror.AuthenticationRequired:
		return "Sign in to view this post"
	case apperror.SubscriptionRequired:
		return "Subscribe to this creator to view this post"
	case apperror.PaymentRequired:
		return "Unlock this post to view it"
	default:
		return "This post cannot be viewed"
	}
}

func granted(owner bool) Decision {
	return Decision{HasAccess: true, IsCreatorOwner: owner}
}

func denied(reason apperror.Kind) Decision {
	return Decision{HasAccess: false, Reason: reason}
}

// facts answers the viewer-specific questions of the decision table. The
// store-backed form queries on demand; ViewerSnapshot answers from memory.
type facts interface {
	ownedCreatorID(ctx context.Context) (string, error)
	subscribedTo(ctx context.Context, creatorID string, now time.Time) (bool, error)
	unlocked(ctx context.Context, postID string) (bool, error)
}

func decide(ctx context.Context, post *entity.Post, viewerID string, f facts, now time.Time) (Decision, error) {
	if post.Visibility == entity.VisibilityPublic {
		if viewerID == "" {
			return granted(false), nil
		}
		owned, err := f.ownedCreatorID(ctx)
		if err != nil {
			return Decision{}, err
		}
		return granted(owned != "" && owned == post.CreatorID), nil
	}

	if viewerID == "" {
		return denied(apperror.AuthenticationRequired), nil
	}

	owned, err := f.ownedCreatorID(ctx)
	if err != nil {
		return Decision{}, err
	}
	if owned != "" && owned == post.CreatorID {
		return granted(true), nil
	}

	switch post.Visibility {
	case entity.VisibilityMembers:
		ok, err := f.subscribedTo(ctx, post.CreatorID, now)
		if err != nil {
			return Decision{}, err
		}
		if ok {
			return granted(false), nil
		}
		return denied(apperror.SubscriptionRequired), nil

	case entity.VisibilityPPV:
		ok, err := f.unlocked(ctx, post.ID)
		if err != nil {
			return Decision{}, err
		}
		if ok {
			return granted(false), nil
		}
		return denied(apperror.PaymentRequired), nil
	}

	return denied(apperror.UnknownVisibility), nil
}

type Evaluator struct {
	store Reader
	now   func() time.Time
}

type Option func(*Evaluator)

func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) { e.now = now }
}

func NewEvaluator(store Reader, opts ...Option) *Evaluator {
	e := &Evaluator{store: store, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate decides access to one post. viewerID is empty for anonymous
// viewers. A denial is a Decision, not an error; the error result is only
// for store failures.
func (e *Evaluator) Evaluate(ctx context.Context, post *entity.Post, viewerID string) (Decision, error) {
	d, err := decide(ctx, post, viewerID, &storeFacts{store: e.store, viewerID: viewerID}, e.now())
	if err != nil {
		return Decision{}, err
	}
	record(post, d)
	return d, nil
}

// EvaluateAll evaluates and redacts every post for one viewer, reading the
// viewer's profile, subscriptions and unlocks once for the whole batch.
func (e *Evaluator) EvaluateAll(ctx context.Context, posts []*entity.Post, viewerID string) ([]entity.PostView, error) {
	snap, err := LoadSnapshot(ctx, e.store, viewerID)
	if err != nil {
		return nil, err
	}

	now := e.now()
	views := make([]entity.PostView, 0, len(posts))
	for _, post := range posts {
		d := snap.Decide(post, now)
		record(post, d)
		views = append(views, Redact(post, d))
	}
	return views, nil
}

func record(post *entity.Post, d Decision) {
	visibility := string(post.Visibility)
	if !post.Visibility.Valid() {
		visibility = "unknown"
	}
	outcome := "granted"
	if !d.HasAccess {
		outcome = string(d.Reason)
	}
	metrics.EntitlementDecisions.WithLabelValues(visibility, outcome).Inc()
}

type storeFacts struct {
	store    Reader
	viewerID string

	creatorLoaded bool
	creatorID     string
}

func (f *storeFacts) ownedCreatorID(ctx context.Context) (string, error) {
	if f.creatorLoaded {
		return f.creatorID, nil
	}
	creator, err := f.store.GetCreatorByUserID(ctx, f.viewerID)
	switch {
	case errors.Is(err, repo.ErrNotFound):
	case err != nil:
		return "", fmt.Errorf("failed to load viewer creator profile: %w", err)
	default:
		f.creatorID = creator.ID
	}
	f.creatorLoaded = true
	return f.creatorID, nil
}

func (f *storeFacts) subscribedTo(ctx context.Context, creatorID string, now time.Time) (bool, error) {
	subs, err := f.store.ListSubscriptionsBySupporter(ctx, f.viewerID)
	if err != nil {
		return false, fmt.Errorf("failed to load viewer subscriptions: %w", err)
	}
	return lifecycle.EffectiveFor(subs, creatorID, now) != nil, nil
}

func (f *storeFacts) unlocked(ctx context.Context, postID string) (bool, error) {
	_, err := f.store.GetPostUnlock(ctx, postID, f.viewerID)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("failed to load post unlock: %w", err)
	}
	return true, nil
}
