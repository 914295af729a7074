package deadline

import (
	"math"
	"time"
)

// AtMidnight truncates t to local midnight, dropping the time component.
func AtMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysUntil returns the whole-day count from now to due. Negative means past,
// 0 today, positive future. Due is first re-expressed in now's location so a
// UTC timestamp and a local clock land on the same calendar. The dates are
// then rebuilt in UTC before subtracting, which keeps every day exactly 24h
// regardless of DST transitions in between.
func DaysUntil(due, now time.Time) int {
	dy, dm, dd := due.In(now.Location()).Date()
	ny, nm, nd := now.Date()
	diff := time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC).
		Sub(time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC))
	return int(math.Ceil(diff.Hours() / 24))
}

// AddMonths adds n calendar months to t, clamping to the last day of the
// resulting month when the original day does not exist there
// (Jan 31 + 1 month = Feb 28/29, not Mar 3). The result is at midnight.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, time.Month(int(m)+n), 1, 0, 0, 0, 0, t.Location())
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, t.Location())
}

// NextMidnight returns the first local midnight strictly after now.
func NextMidnight(now time.Time) time.Time {
	return AtMidnight(now).AddDate(0, 0, 1)
}
