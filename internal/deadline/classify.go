package deadline

import (
	"sort"
	"time"

	"scadenze/internal/models"
)

// Bucket is the live urgency classification of a deadline, computed from the
// current date rather than the possibly-stale persisted status.
type Bucket string

const (
	BucketActive  Bucket = "active"
	BucketUrgent  Bucket = "urgent"
	BucketOverdue Bucket = "overdue"
	BucketClosed  Bucket = "closed"
)

// urgentWindowDays is the span, in days from today, inside which a pending
// deadline counts as urgent.
const urgentWindowDays = 5

// EffectiveBucket classifies d as of now. Completed deadlines are closed no
// matter their dates. One-time subscriptions never leave active on their own;
// they only close when the user completes them. Everything else buckets by
// day distance to the due date.
func EffectiveBucket(d models.Deadline, now time.Time) Bucket {
	if d.Status == models.StatusCompleted {
		return BucketClosed
	}
	if IsOneTime(d) || d.DueDate == nil {
		return BucketActive
	}
	days := DaysUntil(*d.DueDate, now)
	switch {
	case days < 0:
		return BucketOverdue
	case days <= urgentWindowDays:
		return BucketUrgent
	}
	return BucketActive
}

// StaleOverdueIDs selects the deadlines whose persisted status must be
// reconciled to overdue: still marked active, not one-time, due date in the
// past. This is the only path that mutates persisted status outside explicit
// user action.
func StaleOverdueIDs(deadlines []models.Deadline, now time.Time) []string {
	ids := []string{}
	for _, d := range deadlines {
		if d.Status != models.StatusActive || IsOneTime(d) || d.DueDate == nil {
			continue
		}
		if DaysUntil(*d.DueDate, now) < 0 {
			ids = append(ids, d.ID)
		}
	}
	return ids
}

// SortForDisplay orders deadlines in place: completed last; among the rest,
// overdue-by-date first, then priority high to low, then ascending due date.
func SortForDisplay(deadlines []models.Deadline, now time.Time) {
	overdue := func(d models.Deadline) bool {
		return d.Status != models.StatusCompleted && d.DueDate != nil && DaysUntil(*d.DueDate, now) < 0
	}
	sort.SliceStable(deadlines, func(i, j int) bool {
		a, b := deadlines[i], deadlines[j]
		if ac, bc := a.Status == models.StatusCompleted, b.Status == models.StatusCompleted; ac != bc {
			return bc
		}
		if ao, bo := overdue(a), overdue(b); ao != bo {
			return ao
		}
		if ar, br := models.PriorityRank(a.Priority), models.PriorityRank(b.Priority); ar != br {
			return ar > br
		}
		switch {
		case a.DueDate == nil:
			return false
		case b.DueDate == nil:
			return true
		}
		return a.DueDate.Before(*b.DueDate)
	})
}
