package models

import "time"

type Category string

const (
	CategoryDomain       Category = "domain"
	CategoryMailbox      Category = "mailbox"
	CategoryContract     Category = "contract"
	CategorySocial       Category = "social"
	CategorySubscription Category = "subscription"
)

func ValidCategory(c Category) bool {
	switch c {
	case CategoryDomain, CategoryMailbox, CategoryContract, CategorySocial, CategorySubscription:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func ValidPriority(p Priority) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// PriorityRank orders priorities for display sorting (higher sorts first).
func PriorityRank(p Priority) int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusOverdue   Status = "overdue"
)

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Deadline is a tracked obligation. Payload holds the category-specific
// pipe-delimited fields; only the codec in internal/deadline reads it.
type Deadline struct {
	ID             string     `json:"id"`
	UserID         int        `json:"user_id"`
	Title          string     `json:"title"`
	Category       Category   `json:"category"`
	Payload        string     `json:"payload"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	Priority       Priority   `json:"priority"`
	Status         Status     `json:"status"`
	LastRemindedAt *time.Time `json:"last_reminded_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type NotificationKind string

const (
	KindOverdue     NotificationKind = "overdue"
	KindDueToday    NotificationKind = "due_today"
	KindDueTomorrow NotificationKind = "due_tomorrow"
	KindUpcoming    NotificationKind = "upcoming"
	// KindCompleted exists for store compatibility; no derivation emits it.
	KindCompleted NotificationKind = "completed"
)

type Notification struct {
	ID         string           `json:"id"`
	UserID     int              `json:"user_id"`
	DeadlineID string           `json:"deadline_id"`
	Kind       NotificationKind `json:"kind"`
	Title      string           `json:"title"`
	Message    string           `json:"message"`
	Read       bool             `json:"read"`
	CreatedAt  time.Time        `json:"created_at"`
}

// ReminderConfig is the per-user settings record.
type ReminderConfig struct {
	Email             string `json:"email"`
	ReminderDays      int    `json:"reminder_days"`
	ReminderTime      string `json:"reminder_time"`
	ReminderFrequency string `json:"reminder_frequency"`
	Theme             string `json:"theme"`
}

// DefaultReminderConfig matches the values applied when a user has never
// saved settings.
func DefaultReminderConfig() ReminderConfig {
	return ReminderConfig{
		ReminderDays:      5,
		ReminderTime:      "09:00",
		ReminderFrequency: "once",
		Theme:             "system",
	}
}

type CreateDeadlineRequest struct {
	Title    string     `json:"title"`
	Category Category   `json:"category"`
	Payload  string     `json:"payload"`
	DueDate  *time.Time `json:"due_date,omitempty"`
	Priority Priority   `json:"priority,omitempty"`
}

type UpdateDeadlineRequest struct {
	Title    string     `json:"title"`
	Category Category   `json:"category,omitempty"`
	Payload  string     `json:"payload"`
	DueDate  *time.Time `json:"due_date,omitempty"`
	Priority Priority   `json:"priority,omitempty"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Remember bool   `json:"remember,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Remember bool   `json:"remember,omitempty"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
