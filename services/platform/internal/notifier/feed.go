package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultFeedSize = 100

// Activity is one entry in a creator's activity feed.
type Activity struct {
	Type       string    `json:"type"`
	ActorID    string    `json:"actor_id"`
	SubjectID  string    `json:"subject_id"`
	Amount     int64     `json:"amount,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// listClient is the subset of *redis.Client the feed needs.
type listClient interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	LTrim(ctx context.Context, key string, start, stop int64) *redis.StatusCmd
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
}

// Feed keeps the most recent activity per creator in a capped redis list,
// newest first.
type Feed struct {
	client listClient
	size   int64
}

func NewFeed(client listClient, size int) *Feed {
	if size <= 0 {
		size = DefaultFeedSize
	}
	return &Feed{client: client, size: int64(size)}
}

func feedKey(creatorID string) string {
	return fmt.Sprintf("activity:%s", creatorID)
}

func (f *Feed) Append(ctx context.Context, creatorID string, activity Activity) error {
	body, err := json.Marshal(activity)
	if err != nil {
		return fmt.Errorf("failed to marshal activity: %w", err)
	}

	key := feedKey(creatorID)
	if err := f.client.LPush(ctx, key, body).Err(); err != nil {
		return fmt.Errorf("failed to push activity: %w", err)
	}
	if err := f.client.LTrim(ctx, key, 0, f.size-1).Err(); err != nil {
		return fmt.Errorf("failed to trim activity feed: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. Entries that no longer
// decode are skipped.
func (f *Feed) Recent(ctx context.Context, creatorID string, limit int) ([]Activity, error) {
	if limit <= 0 || int64(limit) > f.size {
		limit = int(f.size)
	}

	raw, err := f.client.LRange(ctx, feedKey(creatorID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read activity feed: %w", err)
	}

	activities := make([]Activity, 0, len(raw))
	for _, item := range raw {
		var a Activity
		if err := json.Unmarshal([]byte(item), &a); err == nil {
			activities = append(activities, a)
		}
	}
	return activities, nil
}
