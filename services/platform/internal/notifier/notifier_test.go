package notifier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"fanvault/pkg/logger"
	"fanvault/pkg/metrics"
	"fanvault/pkg/queue"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLists struct {
	mu      sync.Mutex
	lists   map[string][]string
	pushErr error
}

func newFakeLists() *fakeLists {
	return &fakeLists{lists: make(map[string][]string)}
}

func (f *fakeLists) LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pushErr != nil {
		return redis.NewIntResult(0, f.pushErr)
	}
	for _, v := range values {
		var s string
		switch x := v.(type) {
		case []byte:
			s = string(x)
		default:
			s = fmt.Sprint(x)
		}
		f.lists[key] = append([]string{s}, f.lists[key]...)
	}
	return redis.NewIntResult(int64(len(f.lists[key])), nil)
}

func (f *fakeLists) LTrim(ctx context.Context, key string, start, stop int64) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists[key] = slice(f.lists[key], start, stop)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeLists) LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	return redis.NewStringSliceResult(append([]string(nil), slice(f.lists[key], start, stop)...), nil)
}

func slice(list []string, start, stop int64) []string {
	n := int64(len(list))
	if stop < 0 || stop >= n {
		stop = n - 1
	}
	if start >= n || start > stop {
		return nil
	}
	return list[start : stop+1]
}

func testLogger() *logger.Logger {
	return logger.NewWithOptions("error", true, io.Discard)
}

func tipEvent(creatorID string, amount int64) queue.Event {
	return queue.Event{
		Type:       queue.EventTipCreated,
		CreatorID:  creatorID,
		ActorID:    "fan-1",
		SubjectID:  fmt.Sprintf("tip-%d", amount),
		Amount:     amount,
		OccurredAt: time.Date(2025, 4, 10, 15, 0, 0, 0, time.UTC),
	}
}

func TestFeed_NewestFirstAndCapped(t *testing.T) {
	lists := newFakeLists()
	feed := NewFeed(lists, 3)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.NoError(t, feed.Append(ctx, "creator-1", Activity{Type: queue.EventTipCreated, Amount: int64(i * 100)}))
	}

	got, err := feed.Recent(ctx, "creator-1", 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, int64(500), got[0].Amount)
	assert.Equal(t, int64(300), got[2].Amount)

	got, err = feed.Recent(ctx, "creator-1", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(500), got[0].Amount)

	got, err = feed.Recent(ctx, "someone-else", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFeed_SkipsUndecodableEntries(t *testing.T) {
	lists := newFakeLists()
	lists.lists["activity:creator-1"] = []string{"not json", `{"type":"tip.created","amount":250}`}

	got, err := NewFeed(lists, 0).Recent(context.Background(), "creator-1", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(250), got[0].Amount)
}

func TestNotifier_RecordsMonetizationEvents(t *testing.T) {
	lists := newFakeLists()
	feed := NewFeed(lists, 10)
	n := New(feed, testLogger())

	before := testutil.ToFloat64(metrics.NotificationsProcessed.WithLabelValues(queue.EventTipCreated, "recorded"))
	require.NoError(t, n.Handle(tipEvent("creator-1", 375)))

	got, err := feed.Recent(context.Background(), "creator-1", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, queue.EventTipCreated, got[0].Type)
	assert.Equal(t, "fan-1", got[0].ActorID)
	assert.Equal(t, int64(375), got[0].Amount)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.NotificationsProcessed.WithLabelValues(queue.EventTipCreated, "recorded")))
}

func TestNotifier_SkipsMessagesAndUnattributedTips(t *testing.T) {
	lists := newFakeLists()
	n := New(NewFeed(lists, 10), testLogger())

	require.NoError(t, n.Handle(queue.Event{Type: queue.EventMessageCreated, CreatorID: "user-2", SubjectID: "msg-1"}))
	require.NoError(t, n.Handle(tipEvent("", 100)))

	assert.Empty(t, lists.lists)
}

func TestNotifier_FailedAppendIsReturned(t *testing.T) {
	lists := newFakeLists()
	lists.pushErr = errors.New("connection refused")
	n := New(NewFeed(lists, 10), testLogger())

	err := n.Handle(tipEvent("creator-1", 100))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

type stubBacklog struct {
	n   int
	err error
}

func (s stubBacklog) QueueLength() (int, error) {
	return s.n, s.err
}

func TestWatchBacklog_SamplesUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	WatchBacklog(ctx, stubBacklog{n: 7}, time.Hour, testLogger())
	assert.Equal(t, float64(7), testutil.ToFloat64(metrics.NotificationBacklog))

	WatchBacklog(ctx, stubBacklog{err: errors.New("channel closed")}, time.Hour, testLogger())
	assert.Equal(t, float64(7), testutil.ToFloat64(metrics.NotificationBacklog))
}
