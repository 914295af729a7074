package deadline

import (
	"time"

	"scadenze/internal/models"
)

// NextRenewal computes the next due date for a renewable deadline. It returns
// ok=false when the deadline cannot be renewed: no due date, or a payload
// whose renewal period maps to zero months (one-time subscriptions and
// corrupt periods both land here). The base date anchors to today when the
// current due date has already lapsed, so renewing a long-stale subscription
// does not burn through missed periods; renewing on time extends from the
// existing due date as usual.
func NextRenewal(d models.Deadline, now time.Time) (time.Time, bool) {
	if d.DueDate == nil {
		return time.Time{}, false
	}
	months := PeriodMonths(DecodeSubscription(d.Payload).Period)
	if months <= 0 {
		return time.Time{}, false
	}
	base := *d.DueDate
	if base.Before(now) {
		base = now
	}
	return AddMonths(base, months), true
}

// Renewable reports whether a renew action is eligible for d: a due date is
// set and the encoded period maps to a positive number of months.
func Renewable(d models.Deadline) bool {
	return d.DueDate != nil && PeriodMonths(DecodeSubscription(d.Payload).Period) > 0
}
