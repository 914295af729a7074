package api

import (
	"database/sql"
	"log"
	"time"

	"scadenze/internal/deadline"
	"scadenze/internal/models"
	"scadenze/internal/store"
)

// ReconcileOverdueDeadlines is the daily consistency sweep: deadlines still
// persisted as active whose due date has passed are written back as overdue.
// One-time subscriptions never qualify. Runs once at startup and at every
// local midnight; between runs the stale persisted status is cosmetic only,
// since list responses classify live.
func ReconcileOverdueDeadlines(db *sql.DB, now time.Time) error {
	deadlines := store.NewDeadlineStore(db)

	ds, err := deadlines.ListAll()
	if err != nil {
		return err
	}

	ids := deadline.StaleOverdueIDs(ds, now)
	if len(ids) == 0 {
		return nil
	}

	if err := deadlines.UpdateStatusMany(ids, models.StatusOverdue); err != nil {
		return err
	}

	log.Printf("Marked %d lapsed deadlines overdue", len(ids))
	return nil
}

func withinReminderWindow(d models.Deadline, windowDays int, now time.Time) bool {
	if d.Status != models.StatusActive || deadline.IsOneTime(d) || d.DueDate == nil {
		return false
	}
	days := deadline.DaysUntil(*d.DueDate, now)
	return days >= 0 && days <= windowDays
}

// shouldRemind applies the user's reminder frequency to one deadline:
// "once" sends only while the deadline has never been reminded about,
// "daily" re-sends after 24 hours.
func shouldRemind(d models.Deadline, frequency string, now time.Time) bool {
	switch frequency {
	case "once":
		return d.LastRemindedAt == nil
	case "daily":
		return d.LastRemindedAt == nil || now.Sub(*d.LastRemindedAt) >= 24*time.Hour
	}
	return false
}

// SendDueReminders emails each configured user a digest of deadlines inside
// their reminder window. Skipped entirely for users without a saved email.
// Send failures are logged per user and do not abort the sweep.
func SendDueReminders(db *sql.DB, now time.Time) error {
	deadlines := store.NewDeadlineStore(db)

	rows, err := db.Query(
		"SELECT user_id, email, reminder_days, reminder_frequency FROM user_settings WHERE email != ''",
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	type recipient struct {
		userID    int
		email     string
		window    int
		frequency string
	}
	recipients := []recipient{}
	for rows.Next() {
		var r recipient
		if err := rows.Scan(&r.userID, &r.email, &r.window, &r.frequency); err != nil {
			return err
		}
		recipients = append(recipients, r)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(recipients) == 0 {
		return nil
	}

	all, err := deadlines.ListAll()
	if err != nil {
		return err
	}
	byUser := map[int][]models.Deadline{}
	for _, d := range all {
		byUser[d.UserID] = append(byUser[d.UserID], d)
	}

	for _, r := range recipients {
		due := []models.Deadline{}
		ids := []string{}
		for _, d := range byUser[r.userID] {
			if withinReminderWindow(d, r.window, now) && shouldRemind(d, r.frequency, now) {
				due = append(due, d)
				ids = append(ids, d.ID)
			}
		}
		if len(due) == 0 {
			continue
		}

		if err := SendReminderEmail(r.email, due, now); err != nil {
			log.Printf("Reminder email for user %d failed: %v", r.userID, err)
			continue
		}
		if err := deadlines.TouchReminded(ids, now); err != nil {
			log.Printf("Failed to stamp reminders for user %d: %v", r.userID, err)
		}
	}
	return nil
}

// RunSweep executes the reconciliation and the reminder pass together; this
// is the unit the scheduler invokes.
func RunSweep(db *sql.DB) {
	now := time.Now()
	if err := ReconcileOverdueDeadlines(db, now); err != nil {
		log.Printf("Reconciliation sweep error: %v", err)
	}
	if err := SendDueReminders(db, now); err != nil {
		log.Printf("Reminder sweep error: %v", err)
	}
}
