package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"scadenze/internal/models"
)

type DeadlineStore struct {
	db *sql.DB
}

func NewDeadlineStore(db *sql.DB) *DeadlineStore {
	return &DeadlineStore{db: db}
}

const deadlineColumns = "id, user_id, title, category, payload, due_date, priority, status, last_reminded_at, created_at, updated_at"

func scanDeadline(row interface{ Scan(...any) error }) (models.Deadline, error) {
	var d models.Deadline
	var due, reminded sql.NullTime
	err := row.Scan(
		&d.ID, &d.UserID, &d.Title, &d.Category, &d.Payload,
		&due, &d.Priority, &d.Status, &reminded, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return d, err
	}
	if due.Valid {
		t := due.Time
		d.DueDate = &t
	}
	if reminded.Valid {
		t := reminded.Time
		d.LastRemindedAt = &t
	}
	return d, nil
}

func (s *DeadlineStore) collect(rows *sql.Rows) ([]models.Deadline, error) {
	defer rows.Close()
	deadlines := []models.Deadline{}
	for rows.Next() {
		d, err := scanDeadline(rows)
		if err != nil {
			return nil, err
		}
		deadlines = append(deadlines, d)
	}
	return deadlines, rows.Err()
}

// ListByUser returns the user's deadlines, newest creation first.
func (s *DeadlineStore) ListByUser(userID int) ([]models.Deadline, error) {
	rows, err := s.db.Query(
		"SELECT "+deadlineColumns+" FROM deadlines WHERE user_id = ? ORDER BY created_at DESC",
		userID,
	)
	if err != nil {
		return nil, err
	}
	return s.collect(rows)
}

// ListAll returns every deadline across users; the reconciliation sweep and
// the reminder pass run system-wide.
func (s *DeadlineStore) ListAll() ([]models.Deadline, error) {
	rows, err := s.db.Query("SELECT " + deadlineColumns + " FROM deadlines ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	return s.collect(rows)
}

func (s *DeadlineStore) Get(id string, userID int) (models.Deadline, error) {
	d, err := scanDeadline(s.db.QueryRow(
		"SELECT "+deadlineColumns+" FROM deadlines WHERE id = ? AND user_id = ?",
		id, userID,
	))
	if err == sql.ErrNoRows {
		return d, ErrNotFound
	}
	return d, err
}

// Insert assigns the id and timestamps, then persists d.
func (s *DeadlineStore) Insert(d *models.Deadline) error {
	d.ID = uuid.NewString()
	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now
	_, err := s.db.Exec(
		`INSERT INTO deadlines (id, user_id, title, category, payload, due_date, priority, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.UserID, d.Title, d.Category, d.Payload, d.DueDate, d.Priority, d.Status, d.CreatedAt, d.UpdatedAt,
	)
	return err
}

// Update replaces the mutable fields of d and bumps updated_at. Category is
// immutable and deliberately absent from the statement.
func (s *DeadlineStore) Update(d *models.Deadline) error {
	d.UpdatedAt = time.Now()
	res, err := s.db.Exec(
		`UPDATE deadlines SET title = ?, payload = ?, due_date = ?, priority = ?, status = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		d.Title, d.Payload, d.DueDate, d.Priority, d.Status, d.UpdatedAt, d.ID, d.UserID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatusMany writes one status to a batch of deadlines; used by the
// reconciliation sweep.
func (s *DeadlineStore) UpdateStatusMany(ids []string, status models.Status) error {
	if len(ids) == 0 {
		return nil
	}
	args := []any{status}
	for _, id := range ids {
		args = append(args, id)
	}
	_, err := s.db.Exec(
		"UPDATE deadlines SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id IN ("+placeholders(len(ids))+")",
		args...,
	)
	return err
}

// TouchReminded stamps last_reminded_at for a batch of deadlines after a
// reminder email went out.
func (s *DeadlineStore) TouchReminded(ids []string, now time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	args := []any{now}
	for _, id := range ids {
		args = append(args, id)
	}
	_, err := s.db.Exec(
		"UPDATE deadlines SET last_reminded_at = ? WHERE id IN ("+placeholders(len(ids))+")",
		args...,
	)
	return err
}

// ClearReminded resets the reminder mark so a deadline that starts a new
// period is eligible for "once" reminders again.
func (s *DeadlineStore) ClearReminded(id string, userID int) error {
	_, err := s.db.Exec(
		"UPDATE deadlines SET last_reminded_at = NULL WHERE id = ? AND user_id = ?",
		id, userID,
	)
	return err
}

func (s *DeadlineStore) Delete(id string, userID int) error {
	res, err := s.db.Exec("DELETE FROM deadlines WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
