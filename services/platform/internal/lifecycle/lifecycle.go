// Package lifecycle computes subscription state from its date window. The
// functions are pure; persisting expiry is the caller's job.
package lifecycle

import (
	"time"

	"fanvault/services/platform/internal/entity"
)

const (
	// DefaultPeriodDays is the fixed length of a new subscription and the
	// renewal length when none is given.
	DefaultPeriodDays = 30

	day = 24 * time.Hour
)

// RemainingDays is ceil((EndDate - now) / 1 day), never negative.
func RemainingDays(sub *entity.Subscription, now time.Time) int {
	left := sub.EndDate.Sub(now)
	if left <= 0 {
		return 0
	}
	days := int(left / day)
	if left%day != 0 {
		days++
	}
	return days
}

// IsEffective requires both the active flag and an end date in the future.
func IsEffective(sub *entity.Subscription, now time.Time) bool {
	return sub.Active && sub.EndDate.After(now)
}

// NeedsExpiry reports a row still flagged active after its window closed.
func NeedsExpiry(sub *entity.Subscription, now time.Time) bool {
	return sub.Active && !sub.EndDate.After(now)
}

func PeriodEnd(start time.Time) time.Time {
	return start.Add(DefaultPeriodDays * day)
}

// RenewedEndDate extends from the later of now and the current end, so an
// active subscription loses no time and a lapsed one gets no back credit.
// Non-positive days fall back to DefaultPeriodDays.
func RenewedEndDate(currentEnd, now time.Time, days int) time.Time {
	if days <= 0 {
		days = DefaultPeriodDays
	}
	from := currentEnd
	if now.After(from) {
		from = now
	}
	return from.Add(time.Duration(days) * day)
}

// Expire returns sub with Active cleared when NeedsExpiry holds. The second
// result reports whether anything changed.
func Expire(sub *entity.Subscription, now time.Time) (*entity.Subscription, bool) {
	if !NeedsExpiry(sub, now) {
		return sub, false
	}
	expired := *sub
	expired.Active = false
	return &expired, true
}

// EffectiveFor returns the first subscription in subs that is effective for
// creatorID, or nil.
func EffectiveFor(subs []*entity.Subscription, creatorID string, now time.Time) *entity.Subscription {
	for _, sub := range subs {
		if sub.CreatorID == creatorID && IsEffective(sub, now) {
			return sub
		}
	}
	return nil
}
