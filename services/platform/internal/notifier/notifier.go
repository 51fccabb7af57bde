package notifier

import (
	"context"
	"time"

	"fanvault/pkg/logger"
	"fanvault/pkg/metrics"
	"fanvault/pkg/queue"
)

const appendTimeout = 3 * time.Second

// Notifier turns queued monetization events into creator activity.
type Notifier struct {
	feed   *Feed
	logger *logger.Logger
}

func New(feed *Feed, log *logger.Logger) *Notifier {
	return &Notifier{feed: feed, logger: log}
}

func tracked(eventType string) bool {
	switch eventType {
	case queue.EventSubscriptionCreated, queue.EventSubscriptionRenewed, queue.EventTipCreated, queue.EventPostUnlocked:
		return true
	}
	return false
}

// Handle records one event. A returned error makes the consumer requeue it.
func (n *Notifier) Handle(event queue.Event) error {
	if !tracked(event.Type) || event.CreatorID == "" {
		n.logger.Debug("Skipping %s event %s", event.Type, event.SubjectID)
		metrics.NotificationsProcessed.WithLabelValues(event.Type, "skipped").Inc()
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), appendTimeout)
	defer cancel()

	err := n.feed.Append(ctx, event.CreatorID, Activity{
		Type:       event.Type,
		ActorID:    event.ActorID,
		SubjectID:  event.SubjectID,
		Amount:     event.Amount,
		OccurredAt: event.OccurredAt,
	})
	if err != nil {
		metrics.NotificationsProcessed.WithLabelValues(event.Type, "failed").Inc()
		return err
	}

	metrics.NotificationsProcessed.WithLabelValues(event.Type, "recorded").Inc()
	n.logger.Info("Creator %s notified of %s from %s", event.CreatorID, event.Type, event.ActorID)
	return nil
}

// BacklogReader reports how many events wait in the queue.
// *queue.Client satisfies it.
type BacklogReader interface {
	QueueLength() (int, error)
}

// WatchBacklog samples the queue length into a gauge until ctx ends.
func WatchBacklog(ctx context.Context, reader BacklogReader, interval time.Duration, log *logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		sampleBacklog(reader, log)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func sampleBacklog(reader BacklogReader, log *logger.Logger) {
	n, err := reader.QueueLength()
	if err != nil {
		log.Warn("Failed to inspect notification queue: %v", err)
		return
	}
	metrics.NotificationBacklog.Set(float64(n))
}
