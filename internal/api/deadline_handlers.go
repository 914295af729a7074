package api

import (
	"database/sql"
	"errors"
	"time"

	"scadenze/internal/deadline"
	"scadenze/internal/models"
	"scadenze/internal/store"

	"github.com/gofiber/fiber/v2"
)

// DeadlineView decorates a stored deadline with its live classification so
// clients filter and color by the effective bucket, never by the possibly
// stale persisted status.
type DeadlineView struct {
	models.Deadline
	Bucket    deadline.Bucket `json:"bucket"`
	DaysUntil *int            `json:"days_until,omitempty"`
}

func viewOf(d models.Deadline, now time.Time) DeadlineView {
	v := DeadlineView{Deadline: d, Bucket: deadline.EffectiveBucket(d, now)}
	if d.DueDate != nil {
		days := deadline.DaysUntil(*d.DueDate, now)
		v.DaysUntil = &days
	}
	return v
}

func storeErr(err error, what string) error {
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, what+" not found")
	}
	return err
}

// validateDeadline applies the creation/edit rules: non-empty title, known
// category and priority, due date mandatory except for one-time
// subscriptions, and the medium-priority policy for one-time subscriptions.
func validateDeadline(d *models.Deadline) error {
	if d.Title == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Title is required")
	}
	if !models.ValidCategory(d.Category) {
		return fiber.NewError(fiber.StatusBadRequest, "Unknown category")
	}
	if d.Priority == "" {
		d.Priority = models.PriorityMedium
	}
	if !models.ValidPriority(d.Priority) {
		return fiber.NewError(fiber.StatusBadRequest, "Unknown priority")
	}
	if deadline.IsOneTime(*d) {
		d.Priority = models.PriorityMedium
	} else if d.DueDate == nil {
		return fiber.NewError(fiber.StatusBadRequest, "Due date is required")
	}
	return nil
}

func CreateDeadlineHandler(db *sql.DB) fiber.Handler {
	deadlines := store.NewDeadlineStore(db)
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)

		var req models.CreateDeadlineRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		d := models.Deadline{
			UserID:   userID,
			Title:    req.Title,
			Category: req.Category,
			Payload:  req.Payload,
			DueDate:  req.DueDate,
			Priority: req.Priority,
			Status:   models.StatusActive,
		}
		if err := validateDeadline(&d); err != nil {
			return err
		}

		if err := deadlines.Insert(&d); err != nil {
			return err
		}

		return c.Status(fiber.StatusCreated).JSON(viewOf(d, time.Now()))
	}
}

func ListDeadlinesHandler(db *sql.DB) fiber.Handler {
	deadlines := store.NewDeadlineStore(db)
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)
		now := time.Now()

		ds, err := deadlines.ListByUser(userID)
		if err != nil {
			return err
		}

		status := models.Status(c.Query("status"))
		bucket := deadline.Bucket(c.Query("bucket"))

		filtered := ds[:0]
		for _, d := range ds {
			if status != "" && d.Status != status {
				continue
			}
			if bucket != "" {
				// Date-driven buckets exclude one-time subscriptions, as in
				// the dashboard filters.
				if bucket != deadline.BucketClosed && deadline.IsOneTime(d) {
					continue
				}
				if deadline.EffectiveBucket(d, now) != bucket {
					continue
				}
			}
			filtered = append(filtered, d)
		}

		deadline.SortForDisplay(filtered, now)

		views := make([]DeadlineView, 0, len(filtered))
		for _, d := range filtered {
			views = append(views, viewOf(d, now))
		}
		return c.JSON(views)
	}
}

func GetDeadlineHandler(db *sql.DB) fiber.Handler {
	deadlines := store.NewDeadlineStore(db)
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)

		d, err := deadlines.Get(c.Params("id"), userID)
		if err != nil {
			return storeErr(err, "Deadline")
		}
		return c.JSON(viewOf(d, time.Now()))
	}
}

func UpdateDeadlineHandler(db *sql.DB) fiber.Handler {
	deadlines := store.NewDeadlineStore(db)
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)

		var req models.UpdateDeadlineRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		d, err := deadlines.Get(c.Params("id"), userID)
		if err != nil {
			return storeErr(err, "Deadline")
		}

		if req.Category != "" && req.Category != d.Category {
			return fiber.NewError(fiber.StatusBadRequest, "Category cannot be changed")
		}

		d.Title = req.Title
		d.Payload = req.Payload
		d.DueDate = req.DueDate
		d.Priority = req.Priority
		if err := validateDeadline(&d); err != nil {
			return err
		}

		if err := deadlines.Update(&d); err != nil {
			return storeErr(err, "Deadline")
		}
		return c.JSON(viewOf(d, time.Now()))
	}
}

func DeleteDeadlineHandler(db *sql.DB) fiber.Handler {
	deadlines := store.NewDeadlineStore(db)
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)

		if err := deadlines.Delete(c.Params("id"), userID); err != nil {
			return storeErr(err, "Deadline")
		}
		return c.JSON(fiber.Map{"success": true})
	}
}

// ToggleCompleteHandler flips a deadline between completed and active.
func ToggleCompleteHandler(db *sql.DB) fiber.Handler {
	deadlines := store.NewDeadlineStore(db)
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)

		d, err := deadlines.Get(c.Params("id"), userID)
		if err != nil {
			return storeErr(err, "Deadline")
		}

		if d.Status == models.StatusCompleted {
			d.Status = models.StatusActive
		} else {
			d.Status = models.StatusCompleted
		}

		if err := deadlines.Update(&d); err != nil {
			return storeErr(err, "Deadline")
		}
		return c.JSON(viewOf(d, time.Now()))
	}
}

// RenewDeadlineHandler advances a renewable deadline by its encoded period.
// Ineligible deadlines return 422 rather than the silent no-op the core
// reports, so clients can surface the failure.
func RenewDeadlineHandler(db *sql.DB) fiber.Handler {
	deadlines := store.NewDeadlineStore(db)
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)
		now := time.Now()

		d, err := deadlines.Get(c.Params("id"), userID)
		if err != nil {
			return storeErr(err, "Deadline")
		}

		next, ok := deadline.NextRenewal(d, now)
		if !ok {
			return fiber.NewError(fiber.StatusUnprocessableEntity, "Deadline is not renewable")
		}

		d.DueDate = &next
		d.Status = models.StatusActive
		if err := deadlines.Update(&d); err != nil {
			return storeErr(err, "Deadline")
		}
		// A renewal opens a fresh obligation period, so the reminder mark
		// from the previous one must not suppress the next "once" email.
		d.LastRemindedAt = nil
		if err := deadlines.ClearReminded(d.ID, userID); err != nil {
			return storeErr(err, "Deadline")
		}
		return c.JSON(viewOf(d, now))
	}
}
