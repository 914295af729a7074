package deadline

import (
	"testing"
	"time"

	"scadenze/internal/models"
)

func deadlineDueIn(id string, days int, status models.Status, now time.Time) models.Deadline {
	due := AtMidnight(now).AddDate(0, 0, days)
	return models.Deadline{
		ID:       id,
		Title:    id,
		Category: models.CategoryDomain,
		DueDate:  &due,
		Priority: models.PriorityMedium,
		Status:   status,
	}
}

func TestEffectiveBucket(t *testing.T) {
	now := time.Date(2024, time.June, 15, 10, 0, 0, 0, time.Local)

	cases := []struct {
		name string
		d    models.Deadline
		want Bucket
	}{
		{"completed wins over dates", deadlineDueIn("a", -10, models.StatusCompleted, now), BucketClosed},
		{"past due", deadlineDueIn("b", -1, models.StatusActive, now), BucketOverdue},
		{"due today", deadlineDueIn("c", 0, models.StatusActive, now), BucketUrgent},
		{"edge of urgent window", deadlineDueIn("d", 5, models.StatusActive, now), BucketUrgent},
		{"beyond urgent window", deadlineDueIn("e", 6, models.StatusActive, now), BucketActive},
	}
	for _, c := range cases {
		if got := EffectiveBucket(c.d, now); got != c.want {
			t.Errorf("%s: got %s, want %s", c.name, got, c.want)
		}
	}
}

func TestOneTimeSubscriptionNeverExpires(t *testing.T) {
	now := time.Date(2024, time.June, 15, 10, 0, 0, 0, time.Local)
	due := AtMidnight(now).AddDate(0, 0, -100)
	d := models.Deadline{
		ID:       "sub",
		Category: models.CategorySubscription,
		Payload:  "|2024-01-01|49.99|",
		DueDate:  &due,
		Status:   models.StatusActive,
	}

	if got := EffectiveBucket(d, now); got != BucketActive {
		t.Fatalf("one-time subscription classified %s, want active", got)
	}

	d.Status = models.StatusCompleted
	if got := EffectiveBucket(d, now); got != BucketClosed {
		t.Fatalf("completed one-time subscription classified %s, want closed", got)
	}
}

func TestStaleOverdueIDs(t *testing.T) {
	now := time.Date(2024, time.June, 15, 10, 0, 0, 0, time.Local)
	yesterday := AtMidnight(now).AddDate(0, 0, -1)

	oneTime := models.Deadline{
		ID:       "one-time",
		Category: models.CategorySubscription,
		Payload:  "|2024-01-01|9.99|",
		DueDate:  &yesterday,
		Status:   models.StatusActive,
	}
	stale := deadlineDueIn("stale", -1, models.StatusActive, now)
	alreadyOverdue := deadlineDueIn("marked", -3, models.StatusOverdue, now)
	future := deadlineDueIn("future", 3, models.StatusActive, now)

	ids := StaleOverdueIDs([]models.Deadline{oneTime, stale, alreadyOverdue, future}, now)
	if len(ids) != 1 || ids[0] != "stale" {
		t.Fatalf("StaleOverdueIDs = %v, want [stale]", ids)
	}
}

func TestSortForDisplay(t *testing.T) {
	now := time.Date(2024, time.June, 15, 10, 0, 0, 0, time.Local)

	a := deadlineDueIn("A", -5, models.StatusCompleted, now)
	b := deadlineDueIn("B", -2, models.StatusActive, now)
	c := deadlineDueIn("C", 10, models.StatusActive, now)
	c.Priority = models.PriorityHigh

	ds := []models.Deadline{a, c, b}
	SortForDisplay(ds, now)

	got := []string{ds[0].ID, ds[1].ID, ds[2].ID}
	want := []string{"B", "C", "A"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestSortForDisplayTiesByDueDate(t *testing.T) {
	now := time.Date(2024, time.June, 15, 10, 0, 0, 0, time.Local)

	near := deadlineDueIn("near", 2, models.StatusActive, now)
	far := deadlineDueIn("far", 20, models.StatusActive, now)

	ds := []models.Deadline{far, near}
	SortForDisplay(ds, now)
	if ds[0].ID != "near" {
		t.Fatalf("equal-priority deadlines should sort by ascending due date, got %s first", ds[0].ID)
	}
}
