package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fanvault/pkg/apperror"
	"fanvault/pkg/logger"
	"fanvault/pkg/metrics"
	"fanvault/pkg/queue"
	"fanvault/services/platform/internal/repo"
)

// EventPublisher receives committed monetization and messaging events.
// *queue.Client satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, event queue.Event) error
}

type Option func(*options)

type options struct {
	now      func() time.Time
	activity ActivityFeed
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithActivityFeed lets creators read back the activity the notifier
// recorded for them.
func WithActivityFeed(feed ActivityFeed) Option {
	return func(o *options) { o.activity = feed }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

const publishTimeout = 3 * time.Second

// publish delivers an event after its transaction committed. Delivery
// failures are logged and never fail the operation.
func publish(publisher EventPublisher, log *logger.Logger, event queue.Event) {
	if publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := publisher.Publish(ctx, event); err != nil {
		log.Warn("Failed to publish %s for %s: %v", event.Type, event.SubjectID, err)
	}
}

func recordMonetization(eventType string, amount int64) {
	metrics.MonetizationEvents.WithLabelValues(eventType).Inc()
	if amount > 0 {
		metrics.MonetizationAmount.WithLabelValues(eventType).Add(float64(amount))
	}
}

// lookup turns a store miss into a NotFound error naming what was missing.
func lookup(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repo.ErrNotFound) {
		return apperror.New(apperror.NotFound, what+" not found")
	}
	if apperror.KindOf(err) != apperror.Internal {
		return err
	}
	return fmt.Errorf("failed to load %s: %w", strings.ToLower(what), err)
}

func requireViewer(userID string) error {
	if userID == "" {
		return apperror.New(apperror.AuthenticationRequired, "Authentication required")
	}
	return nil
}

func invalid(format string, args ...interface{}) error {
	return apperror.New(apperror.ValidationError, fmt.Sprintf(format, args...))
}

func ptr[T any](v T) *T {
	return &v
}
