package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// EntitlementDecisions counts access decisions by visibility and outcome.
	EntitlementDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fanvault_entitlement_decisions_total",
			Help: "Post access decisions by visibility and reason",
		},
		[]string{"visibility", "outcome"},
	)

	// MonetizationEvents counts committed ledger events by type.
	MonetizationEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fanvault_monetization_events_total",
			Help: "Committed monetization events",
		},
		[]string{"type"},
	)

	// MonetizationAmount sums cents moved by committed ledger events.
	MonetizationAmount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fanvault_monetization_amount_cents_total",
			Help: "Cents accrued to creators by event type",
		},
		[]string{"type"},
	)

	// LazyExpirations counts subscriptions flipped to inactive on read.
	LazyExpirations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fanvault_subscription_lazy_expirations_total",
			Help: "Subscriptions expired lazily during status checks",
		},
	)

	NotificationsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fanvault_notifications_processed_total",
			Help: "Queued events handled by the notifier",
		},
		[]string{"type", "result"},
	)

	NotificationBacklog = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fanvault_notification_queue_depth",
			Help: "Events waiting in the creator notification queue",
		},
	)
)

// Handler serves the default registry for gin.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
