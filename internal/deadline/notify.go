package deadline

import (
	"fmt"
	"sort"
	"time"

	"scadenze/internal/models"
)

// DefaultReminderWindowDays is the upcoming-notification window used when the
// user has never saved reminder settings.
const DefaultReminderWindowDays = 5

func giorni(n int) string {
	if n == 1 {
		return "giorno"
	}
	return "giorni"
}

// Derive computes the notification events a user should see for the given
// deadline snapshot as of now. One-time subscriptions are excluded entirely.
// At most one event is emitted per deadline, with a deterministic
// "{kind}-{deadlineID}" ID so repeated derivations of an unchanged snapshot
// produce the same set. Events come back newest CreatedAt first; within a
// single derivation all share the same instant, so input order is preserved.
func Derive(deadlines []models.Deadline, windowDays int, now time.Time) []models.Notification {
	events := []models.Notification{}
	for _, d := range deadlines {
		if IsOneTime(d) || d.DueDate == nil {
			continue
		}
		days := DaysUntil(*d.DueDate, now)

		var kind models.NotificationKind
		var message string
		switch {
		case days < 0 && d.Status == models.StatusOverdue:
			late := -days
			kind = models.KindOverdue
			message = fmt.Sprintf("Scaduta %d %s fa", late, giorni(late))
		case days == 0 && d.Status == models.StatusActive:
			kind = models.KindDueToday
			message = "Scade oggi!"
		case days == 1 && d.Status == models.StatusActive:
			kind = models.KindDueTomorrow
			message = "Scade domani"
		case days >= 2 && days <= windowDays && d.Status == models.StatusActive:
			kind = models.KindUpcoming
			message = fmt.Sprintf("Scade tra %d %s", days, giorni(days))
		default:
			continue
		}

		events = append(events, models.Notification{
			ID:         fmt.Sprintf("%s-%s", kind, d.ID),
			UserID:     d.UserID,
			DeadlineID: d.ID,
			Kind:       kind,
			Title:      d.Title,
			Message:    message,
			Read:       false,
			CreatedAt:  now,
		})
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})
	return events
}
